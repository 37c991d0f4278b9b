// Command admin manages the portal's schema and accounts.
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/app/services"
	"github.com/yigit/schoolportal/internal/bootstrap"
	"github.com/yigit/schoolportal/internal/pkg/auth"
	"github.com/yigit/schoolportal/internal/pkg/logger"
	"github.com/yigit/schoolportal/internal/seed"
)

func main() {
	cmd := &commandLine{}
	cmd.setup = func(c *cli.Context) (func(), error) {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
		if err != nil {
			return nil, err
		}
		database, err := bootstrap.ConnectDatabase(c.Context, cfg, lgr)
		if err != nil {
			return nil, err
		}

		cmd.accounts = services.NewAccountService(
			repositories.NewRepositories(database.Pool),
			auth.NewPasswordPolicy(cfg.Security.BcryptCost),
			lgr,
		)
		cmd.migrate = func(ctx context.Context) error {
			return bootstrap.RunMigrations(ctx, cfg, database, lgr)
		}
		cmd.seed = func(ctx context.Context) (seed.Counts, error) {
			return bootstrap.SeedDefaultData(ctx, cfg, database, lgr)
		}
		return database.Close, nil
	}

	if err := cmd.app().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
