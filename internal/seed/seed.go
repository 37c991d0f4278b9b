// Package seed creates the demo accounts of a fresh portal installation.
package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	appRepos "github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/app/services"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/auth"
)

var defaultStudents = []dto.CreateStudentRequest{
	{Name: "SOUNTHAR", Regno: "23619233", DOB: "08052005"},
	{Name: "VARSHA", Regno: "23619235", DOB: "21102005"},
	{Name: "PRADEEP", Regno: "23619236", DOB: "09052005"},
	{Name: "GAYISHA", Regno: "23619237", DOB: "10052005"},
}

var defaultTeachers = []dto.CreateTeacherRequest{
	{Name: "SOWMIYA", Regno: "12345678", Password: "sowmiya08"},
	{Name: "SANTHI", Regno: "12345679", Password: "santhi08"},
}

var defaultParents = []dto.CreateParentRequest{
	{StudentRegno: "23619233", StudentDOB: "08052005"},
	{StudentRegno: "23619235", StudentDOB: "21102005"},
	{StudentRegno: "23619236", StudentDOB: "09052005"},
	{StudentRegno: "23619237", StudentDOB: "10052005"},
}

// Counts reports how many records a run created.
type Counts struct {
	Students int
	Teachers int
	Parents  int
}

// CreateDefaultData creates the default students, teachers and parents that do not exist yet.
// Existing records are left alone, so the function can run on every start.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, policy *auth.PasswordPolicy, lgr zerolog.Logger) (Counts, error) {
	accounts := services.NewAccountService(repos, policy, lgr)
	var counts Counts

	lgr.Info().Msg("Checking/Creating default data (Students/Teachers/Parents)...")

	for i := range defaultStudents {
		req := defaultStudents[i]
		exists, err := found(repos.StudentRepository.GetStudentByRegno(ctx, req.Regno))
		if err != nil {
			return counts, err
		}
		if exists {
			continue
		}
		if _, err := accounts.CreateStudent(ctx, &req); err != nil {
			lgr.Error().Err(err).Str("regno", req.Regno).Msg("Error creating default student")
			return counts, err
		}
		counts.Students++
	}

	for i := range defaultTeachers {
		req := defaultTeachers[i]
		exists, err := found(repos.TeacherRepository.GetTeacherByRegno(ctx, req.Regno))
		if err != nil {
			return counts, err
		}
		if exists {
			continue
		}
		if _, err := accounts.CreateTeacher(ctx, &req); err != nil {
			lgr.Error().Err(err).Str("regno", req.Regno).Msg("Error creating default teacher")
			return counts, err
		}
		counts.Teachers++
	}

	for i := range defaultParents {
		req := defaultParents[i]
		exists, err := found(repos.ParentRepository.GetParentByStudentRegno(ctx, req.StudentRegno))
		if err != nil {
			return counts, err
		}
		if exists {
			continue
		}
		if _, err := accounts.CreateParent(ctx, &req); err != nil {
			lgr.Error().Err(err).Str("studentRegno", req.StudentRegno).Msg("Error creating default parent")
			return counts, err
		}
		counts.Parents++
	}

	lgr.Info().
		Int("students", counts.Students).
		Int("teachers", counts.Teachers).
		Int("parents", counts.Parents).
		Msg("Default data ensured")
	return counts, nil
}

// found turns a lookup result into an existence flag; not-found is not an error here.
func found[T any](_ T, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return false, nil
	}
	return false, err
}
