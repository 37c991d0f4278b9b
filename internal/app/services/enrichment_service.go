package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/filestorage"
	"github.com/yigit/schoolportal/internal/pkg/metrics"
	"github.com/yigit/schoolportal/internal/pkg/transcription"
)

// EnrichmentService merges transcription output into stored lecture summaries.
type EnrichmentService interface {
	// Process transcribes one summary's recording and records the outcome.
	// A summary deleted in the meantime is skipped without error.
	Process(ctx context.Context, id string) error
}

type enrichmentServiceImpl struct {
	repo        repositories.LectureSummaryRepository
	storage     filestorage.FileStorage
	transcriber transcription.Transcriber
	logger      zerolog.Logger
}

// NewEnrichmentService creates a new EnrichmentService
func NewEnrichmentService(
	repo repositories.LectureSummaryRepository,
	storage filestorage.FileStorage,
	transcriber transcription.Transcriber,
	logger zerolog.Logger,
) EnrichmentService {
	return &enrichmentServiceImpl{repo: repo, storage: storage, transcriber: transcriber, logger: logger}
}

func (s *enrichmentServiceImpl) Process(ctx context.Context, id string) error {
	summary, err := s.repo.GetLectureSummaryByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Info().Str("id", id).Msg("Lecture summary gone before transcription, skipping")
			return nil
		}
		return fmt.Errorf("load lecture summary %s: %w", id, err)
	}

	start := time.Now()
	result := s.transcribe(ctx, summary)
	metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())

	if result.Status == models.EnrichmentDone {
		metrics.EnrichmentJobs.WithLabelValues(metrics.OutcomeSuccess).Inc()
	} else {
		metrics.EnrichmentJobs.WithLabelValues(metrics.OutcomeFailure).Inc()
	}

	if err := s.repo.SaveEnrichment(ctx, id, result); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Info().Str("id", id).Msg("Lecture summary deleted during transcription, result dropped")
			return nil
		}
		return fmt.Errorf("save enrichment for %s: %w", id, err)
	}

	s.logger.Info().Str("id", id).Str("status", string(result.Status)).Dur("took", time.Since(start)).Msg("Enrichment recorded")
	return nil
}

func (s *enrichmentServiceImpl) transcribe(ctx context.Context, summary *models.LectureSummary) models.EnrichmentResult {
	path := s.storage.FullPath(summary.AudioFile.Filename)
	if path == "" {
		return models.EnrichmentResult{Status: models.EnrichmentFailed, Error: "recording not found"}
	}

	out, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		s.logger.Error().Err(err).Str("id", summary.ID).Str("path", path).Msg("Transcription failed")
		return models.EnrichmentResult{Status: models.EnrichmentFailed, Error: err.Error()}
	}

	text := out.Transcription
	return models.EnrichmentResult{
		Status:        models.EnrichmentDone,
		Transcription: &text,
		Summary:       out.Summary,
	}
}
