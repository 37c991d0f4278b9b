// Command worker runs the lecture transcription consumer outside the API process.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/bootstrap"
	"github.com/yigit/schoolportal/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Error().Err(err).Msg("Worker failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}
	if cfg.Queue.Backend != "redis" {
		return errors.New("standalone worker needs queue.backend=redis; the memory queue only works in-process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	rdb, err := bootstrap.SetupRedis(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer rdb.Close()

	deps, err := bootstrap.BuildDependencies(cfg, repositories.NewRepositories(database.Pool), rdb, lgr)
	if err != nil {
		return err
	}

	return bootstrap.NewEnrichmentWorker(cfg, deps).Run(ctx)
}
