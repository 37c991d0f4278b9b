// Package workers runs background consumers of the job queue.
package workers

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/services"
	"github.com/yigit/schoolportal/internal/pkg/queue"
	"golang.org/x/sync/errgroup"
)

// EnrichmentWorker consumes transcription jobs and hands them to the enrichment service.
type EnrichmentWorker struct {
	jobs        queue.Queue
	enrichment  services.EnrichmentService
	concurrency int
	logger      zerolog.Logger
}

// NewEnrichmentWorker creates a worker running concurrency jobs at a time (at least one).
func NewEnrichmentWorker(jobs queue.Queue, enrichment services.EnrichmentService, concurrency int, logger zerolog.Logger) *EnrichmentWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &EnrichmentWorker{jobs: jobs, enrichment: enrichment, concurrency: concurrency, logger: logger}
}

// Run blocks until ctx is cancelled and the in-flight jobs have finished.
// Job failures are logged; only a broken queue makes Run return an error.
func (w *EnrichmentWorker) Run(ctx context.Context) error {
	messages, err := w.jobs.Consume(ctx)
	if err != nil {
		return err
	}

	w.logger.Info().Int("concurrency", w.concurrency).Msg("Enrichment worker started")

	// Jobs run on their own context so a shutdown lets the current transcription finish.
	jobCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			for msg := range messages {
				w.handle(jobCtx, msg)
			}
			return nil
		})
	}
	err = g.Wait()

	w.logger.Info().Msg("Enrichment worker stopped")
	return err
}

func (w *EnrichmentWorker) handle(ctx context.Context, msg queue.Message) {
	if msg.Type != services.TranscribeJobType {
		w.logger.Warn().Str("type", msg.Type).Msg("Ignoring unknown job type")
		return
	}

	id := string(msg.Body)
	w.logger.Debug().Str("id", id).Msg("Processing transcription job")
	if err := w.enrichment.Process(ctx, id); err != nil {
		w.logger.Error().Err(err).Str("id", id).Msg("Transcription job failed")
	}
}
