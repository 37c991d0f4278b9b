package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/app/services"
	"github.com/yigit/schoolportal/internal/seed"
)

type commandLine struct {
	// setup connects the backing services on first use and returns their closer.
	setup func(c *cli.Context) (func(), error)

	accounts services.AccountService
	migrate  func(ctx context.Context) error
	seed     func(ctx context.Context) (seed.Counts, error)
}

// action wraps fn so that the database is only opened for commands that need it.
func (cmd *commandLine) action(fn func(c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if cmd.setup != nil {
			closeFn, err := cmd.setup(c)
			if err != nil {
				return err
			}
			defer closeFn()
		}
		return fn(c)
	}
}

func optional(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func (cmd *commandLine) app() *cli.App {
	return &cli.App{
		Name:  "admin",
		Usage: "manage the school portal schema and accounts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to the YAML config", EnvVars: []string{"CONFIG_PATH"}},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending SQL migrations",
				Action: cmd.action(cmd.runMigrate),
			},
			{
				Name:   "seed",
				Usage:  "create the default students, teachers and parents",
				Action: cmd.action(cmd.runSeed),
			},
			{
				Name:  "add-student",
				Usage: "create a student; the date of birth is the password unless one is given",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "regno", Required: true},
					&cli.StringFlag{Name: "dob", Required: true, Usage: "DDMMYYYY"},
					&cli.StringFlag{Name: "password"},
				},
				Action: cmd.action(cmd.addStudent),
			},
			{
				Name:  "add-teacher",
				Usage: "create a teacher",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "regno", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: cmd.action(cmd.addTeacher),
			},
			{
				Name:  "add-parent",
				Usage: "create a parent account for a student",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "student-regno", Required: true},
					&cli.StringFlag{Name: "student-dob", Required: true, Usage: "DDMMYYYY"},
					&cli.StringFlag{Name: "password"},
				},
				Action: cmd.action(cmd.addParent),
			},
			{
				Name:  "set-password",
				Usage: "replace the password of a student, teacher or parent",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "role", Required: true, Usage: "Student, Teacher or Parent"},
					&cli.StringFlag{Name: "regno", Required: true, Usage: "login regno (the child's regno for parents)"},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: cmd.action(cmd.setPassword),
			},
		},
	}
}

func (cmd *commandLine) runMigrate(c *cli.Context) error {
	return cmd.migrate(c.Context)
}

func (cmd *commandLine) runSeed(c *cli.Context) error {
	counts, err := cmd.seed(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created %d students, %d teachers, %d parents\n", counts.Students, counts.Teachers, counts.Parents)
	return nil
}

func (cmd *commandLine) addStudent(c *cli.Context) error {
	s, err := cmd.accounts.CreateStudent(c.Context, &dto.CreateStudentRequest{
		Name:     c.String("name"),
		Regno:    c.String("regno"),
		DOB:      c.String("dob"),
		Password: optional(c, "password"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "student %s created with id %s\n", s.Regno, s.ID)
	return nil
}

func (cmd *commandLine) addTeacher(c *cli.Context) error {
	t, err := cmd.accounts.CreateTeacher(c.Context, &dto.CreateTeacherRequest{
		Name:     c.String("name"),
		Regno:    c.String("regno"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "teacher %s created with id %s\n", t.Regno, t.ID)
	return nil
}

func (cmd *commandLine) addParent(c *cli.Context) error {
	p, err := cmd.accounts.CreateParent(c.Context, &dto.CreateParentRequest{
		StudentRegno: c.String("student-regno"),
		StudentDOB:   c.String("student-dob"),
		Password:     optional(c, "password"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "parent of %s created with id %s\n", p.StudentRegno, p.ID)
	return nil
}

func (cmd *commandLine) setPassword(c *cli.Context) error {
	role, err := models.ParseRole(c.String("role"))
	if err != nil {
		return errors.New("role must be Student, Teacher or Parent")
	}
	if err := cmd.accounts.SetPassword(c.Context, role, c.String("regno"), c.String("password")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "password updated for %s %s\n", role, c.String("regno"))
	return nil
}
