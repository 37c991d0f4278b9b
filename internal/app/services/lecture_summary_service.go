package services

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/filestorage"
	"github.com/yigit/schoolportal/internal/pkg/metrics"
	"github.com/yigit/schoolportal/internal/pkg/queue"
)

// TranscribeJobType is the queue message type carrying a lecture summary id to enrich.
const TranscribeJobType = "lecture.transcribe"

var allowedAudioTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/mp3":  true,
}

// LectureSummaryService defines the interface for lecture summary operations
type LectureSummaryService interface {
	Upload(ctx context.Context, teacherID string, req *dto.UploadLectureRequest, file *multipart.FileHeader) (*models.LectureSummary, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]*models.LectureSummary, error)
	ListPublished(ctx context.Context) ([]*models.LectureSummary, error)
	GetOwned(ctx context.Context, id, teacherID string) (*models.LectureSummary, error)
	Publish(ctx context.Context, id, teacherID string) (*models.LectureSummary, error)
	Update(ctx context.Context, id, teacherID string, req *dto.UpdateLectureRequest) (*models.LectureSummary, error)
	Delete(ctx context.Context, id, teacherID string) error
}

// lectureSummaryServiceImpl implements LectureSummaryService
type lectureSummaryServiceImpl struct {
	repo    repositories.LectureSummaryRepository
	storage filestorage.FileStorage
	jobs    queue.Queue
	logger  zerolog.Logger
	now     func() time.Time
}

// NewLectureSummaryService creates a new LectureSummaryService
func NewLectureSummaryService(
	repo repositories.LectureSummaryRepository,
	storage filestorage.FileStorage,
	jobs queue.Queue,
	logger zerolog.Logger,
) LectureSummaryService {
	return &lectureSummaryServiceImpl{
		repo:    repo,
		storage: storage,
		jobs:    jobs,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// IsAllowedAudioType reports whether contentType is an accepted recording format.
func IsAllowedAudioType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return allowedAudioTypes[strings.ToLower(mediaType)]
}

// Upload stores the recording, persists a draft and queues it for transcription.
// Queueing problems never fail the upload; they are recorded on the draft instead.
func (s *lectureSummaryServiceImpl) Upload(ctx context.Context, teacherID string, req *dto.UploadLectureRequest, file *multipart.FileHeader) (*models.LectureSummary, error) {
	if file == nil {
		metrics.LectureUploads.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, apperrors.ErrNoAudioFile
	}
	if !IsAllowedAudioType(file.Header.Get("Content-Type")) {
		metrics.LectureUploads.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, apperrors.ErrUnsupportedAudioType
	}

	stored, err := s.storage.SaveFile(file)
	if err != nil {
		metrics.LectureUploads.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("%w: store recording: %v", apperrors.ErrPersistenceFailure, err)
	}

	summary := &models.LectureSummary{
		Title:     DefaultString(req.Title, dto.DefaultLectureTitle),
		Subject:   DefaultString(req.Subject, dto.DefaultLectureSubject),
		TeacherID: teacherID,
		AudioFile: models.AudioFile{URL: stored.URL, Filename: stored.Filename},
		Status:    models.LectureStatusDraft,
		Enrichment: models.Enrichment{
			Status: models.EnrichmentPending,
		},
	}
	if err := s.repo.CreateLectureSummary(ctx, summary); err != nil {
		if delErr := s.storage.DeleteFile(stored.Filename); delErr != nil {
			s.logger.Warn().Err(delErr).Str("filename", stored.Filename).Msg("Failed to remove orphaned recording")
		}
		metrics.LectureUploads.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("%w: create lecture summary: %v", apperrors.ErrPersistenceFailure, err)
	}
	metrics.LectureUploads.WithLabelValues(metrics.OutcomeSuccess).Inc()

	s.logger.Info().
		Str("id", summary.ID).
		Str("teacherId", teacherID).
		Str("filename", stored.Filename).
		Int64("size", stored.Size).
		Msg("Lecture recording uploaded")

	if err := s.jobs.Publish(ctx, queue.Message{Type: TranscribeJobType, Body: []byte(summary.ID)}); err != nil {
		s.logger.Error().Err(err).Str("id", summary.ID).Msg("Failed to queue transcription")
		result := models.EnrichmentResult{Status: models.EnrichmentFailed, Error: "transcription could not be queued"}
		if saveErr := s.repo.SaveEnrichment(ctx, summary.ID, result); saveErr != nil {
			s.logger.Error().Err(saveErr).Str("id", summary.ID).Msg("Failed to record enrichment failure")
		} else {
			summary.Enrichment = models.Enrichment{Status: result.Status, Error: result.Error}
		}
	}

	return summary, nil
}

// DefaultString returns fallback when v is blank.
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// ListForTeacher returns the teacher's summaries, newest first.
func (s *lectureSummaryServiceImpl) ListForTeacher(ctx context.Context, teacherID string) ([]*models.LectureSummary, error) {
	items, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error getting lecture summaries: %w", err)
	}
	return items, nil
}

// ListPublished returns every published summary, most recently published first.
func (s *lectureSummaryServiceImpl) ListPublished(ctx context.Context) ([]*models.LectureSummary, error) {
	items, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting published lecture summaries: %w", err)
	}
	return items, nil
}

// GetOwned returns the summary only to its owner; anyone else gets not found.
func (s *lectureSummaryServiceImpl) GetOwned(ctx context.Context, id, teacherID string) (*models.LectureSummary, error) {
	summary, err := s.repo.GetLectureSummaryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary.TeacherID != teacherID {
		return nil, apperrors.ErrLectureSummaryNotFound
	}
	return summary, nil
}

// Publish makes a draft visible to students. Publishing twice keeps the first publishedAt.
func (s *lectureSummaryServiceImpl) Publish(ctx context.Context, id, teacherID string) (*models.LectureSummary, error) {
	summary, changed, err := s.repo.PublishOwned(ctx, id, teacherID, s.now())
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.LecturePublished.Inc()
		s.logger.Info().Str("id", id).Str("teacherId", teacherID).Msg("Lecture summary published")
	}
	return summary, nil
}

// Update edits title and subject only.
func (s *lectureSummaryServiceImpl) Update(ctx context.Context, id, teacherID string, req *dto.UpdateLectureRequest) (*models.LectureSummary, error) {
	return s.repo.UpdateOwned(ctx, id, teacherID, req.Patch())
}

// Delete removes the record. The recording stays on disk.
func (s *lectureSummaryServiceImpl) Delete(ctx context.Context, id, teacherID string) error {
	summary, err := s.repo.DeleteOwned(ctx, id, teacherID)
	if err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Str("teacherId", teacherID).Str("filename", summary.AudioFile.Filename).Msg("Lecture summary deleted")
	return nil
}
