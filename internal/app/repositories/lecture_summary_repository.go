package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/logger"
)

// PgLectureSummaryRepository handles database operations for lecture summaries.
type PgLectureSummaryRepository struct {
	db Querier
}

// NewPgLectureSummaryRepository creates a new instance of PgLectureSummaryRepository.
func NewPgLectureSummaryRepository(db Querier) *PgLectureSummaryRepository {
	return &PgLectureSummaryRepository{db: db}
}

var lectureSummaryColumns = []string{
	"id", "title", "subject", "teacher_id", "audio_url", "audio_filename",
	"transcription", "summary", "status", "published_at",
	"enrichment_status", "enrichment_error", "created_at", "updated_at",
}

func returningLectureSummary() string {
	return "RETURNING " + strings.Join(lectureSummaryColumns, ", ")
}

// scanLectureSummary scans a row into a LectureSummary, decoding the JSONB summary.
func scanLectureSummary(row pgx.Row) (*models.LectureSummary, error) {
	var (
		l           models.LectureSummary
		summaryJSON []byte
	)
	err := row.Scan(
		&l.ID, &l.Title, &l.Subject, &l.TeacherID, &l.AudioFile.URL, &l.AudioFile.Filename,
		&l.Transcription, &summaryJSON, &l.Status, &l.PublishedAt,
		&l.Enrichment.Status, &l.Enrichment.Error, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLectureSummaryNotFound
		}
		logger.Error().Err(err).Msg("Error scanning lecture summary")
		return nil, err
	}
	if len(summaryJSON) > 0 {
		var s models.Summary
		if err := json.Unmarshal(summaryJSON, &s); err != nil {
			return nil, fmt.Errorf("decode summary of %s: %w", l.ID, err)
		}
		l.Summary = &s
	}
	return &l, nil
}

func encodeSummary(s *models.Summary) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// CreateLectureSummary inserts l, assigning id and timestamps when missing.
func (r *PgLectureSummaryRepository) CreateLectureSummary(ctx context.Context, l *models.LectureSummary) error {
	prepareIdentity(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if l.Status == "" {
		l.Status = models.LectureStatusDraft
	}
	if l.Enrichment.Status == "" {
		l.Enrichment.Status = models.EnrichmentPending
	}

	summary, err := encodeSummary(l.Summary)
	if err != nil {
		return err
	}

	sql, args, err := psql.Insert("lecture_summaries").
		Columns(lectureSummaryColumns...).
		Values(
			l.ID, l.Title, l.Subject, l.TeacherID, l.AudioFile.URL, l.AudioFile.Filename,
			l.Transcription, summary, l.Status, l.PublishedAt,
			l.Enrichment.Status, l.Enrichment.Error, l.CreatedAt, l.UpdatedAt,
		).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create lecture summary SQL")
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("teacherId", l.TeacherID).Msg("Error creating lecture summary")
		return err
	}
	return nil
}

// GetLectureSummaryByID retrieves a lecture summary regardless of owner or status.
func (r *PgLectureSummaryRepository) GetLectureSummaryByID(ctx context.Context, id string) (*models.LectureSummary, error) {
	if !validUUID(id) {
		return nil, apperrors.ErrLectureSummaryNotFound
	}
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *PgLectureSummaryRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.LectureSummary, error) {
	sql, args, err := psql.Select(lectureSummaryColumns...).From("lecture_summaries").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get lecture summary SQL")
		return nil, err
	}
	return scanLectureSummary(r.db.QueryRow(ctx, sql, args...))
}

// ListByTeacher returns all summaries owned by teacherID, newest first.
func (r *PgLectureSummaryRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*models.LectureSummary, error) {
	if !validUUID(teacherID) {
		return []*models.LectureSummary{}, nil
	}
	return r.list(ctx, psql.Select(lectureSummaryColumns...).
		From("lecture_summaries").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("created_at DESC", "id DESC"))
}

// ListPublished returns every published summary, most recently published first.
func (r *PgLectureSummaryRepository) ListPublished(ctx context.Context) ([]*models.LectureSummary, error) {
	return r.list(ctx, psql.Select(lectureSummaryColumns...).
		From("lecture_summaries").
		Where(squirrel.Eq{"status": models.LectureStatusPublished}).
		OrderBy("published_at DESC", "id DESC"))
}

func (r *PgLectureSummaryRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.LectureSummary, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list lecture summaries SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying lecture summaries")
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.LectureSummary, 0)
	for rows.Next() {
		l, err := scanLectureSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating lecture summaries")
		return nil, err
	}
	return items, nil
}

// PublishOwned performs the conditional draft -> published transition in one statement.
func (r *PgLectureSummaryRepository) PublishOwned(ctx context.Context, id, teacherID string, at time.Time) (*models.LectureSummary, bool, error) {
	if !validUUID(id) || !validUUID(teacherID) {
		return nil, false, apperrors.ErrLectureSummaryNotFound
	}

	sql, args, err := psql.Update("lecture_summaries").
		Set("status", models.LectureStatusPublished).
		Set("published_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID, "status": models.LectureStatusDraft}).
		Suffix(returningLectureSummary()).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building publish lecture summary SQL")
		return nil, false, err
	}

	l, err := scanLectureSummary(r.db.QueryRow(ctx, sql, args...))
	if err == nil {
		return l, true, nil
	}
	if !errors.Is(err, apperrors.ErrLectureSummaryNotFound) {
		return nil, false, err
	}

	// Not an owned draft: distinguish "already published" from "not found".
	l, err = r.getOne(ctx, squirrel.Eq{"id": id, "teacher_id": teacherID})
	if err != nil {
		return nil, false, err
	}
	return l, false, nil
}

// UpdateOwned applies patch to the summary if teacherID owns it.
func (r *PgLectureSummaryRepository) UpdateOwned(ctx context.Context, id, teacherID string, patch models.LectureSummaryPatch) (*models.LectureSummary, error) {
	if !validUUID(id) || !validUUID(teacherID) {
		return nil, apperrors.ErrLectureSummaryNotFound
	}

	q := psql.Update("lecture_summaries").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		Suffix(returningLectureSummary())
	if patch.Title != nil {
		q = q.Set("title", *patch.Title)
	}
	if patch.Subject != nil {
		q = q.Set("subject", *patch.Subject)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update lecture summary SQL")
		return nil, err
	}
	return scanLectureSummary(r.db.QueryRow(ctx, sql, args...))
}

// DeleteOwned removes the summary if teacherID owns it and returns the removed record.
func (r *PgLectureSummaryRepository) DeleteOwned(ctx context.Context, id, teacherID string) (*models.LectureSummary, error) {
	if !validUUID(id) || !validUUID(teacherID) {
		return nil, apperrors.ErrLectureSummaryNotFound
	}

	sql, args, err := psql.Delete("lecture_summaries").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		Suffix(returningLectureSummary()).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete lecture summary SQL")
		return nil, err
	}
	return scanLectureSummary(r.db.QueryRow(ctx, sql, args...))
}

// SaveEnrichment stores the worker outcome. Transcription and summary are only
// written on success so a failed retry never erases earlier output.
func (r *PgLectureSummaryRepository) SaveEnrichment(ctx context.Context, id string, result models.EnrichmentResult) error {
	if !validUUID(id) {
		return apperrors.ErrLectureSummaryNotFound
	}

	q := psql.Update("lecture_summaries").
		Set("enrichment_status", result.Status).
		Set("enrichment_error", result.Error).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})
	if result.Status == models.EnrichmentDone {
		summary, err := encodeSummary(result.Summary)
		if err != nil {
			return err
		}
		q = q.Set("transcription", result.Transcription).Set("summary", summary)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building save enrichment SQL")
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("id", id).Msg("Error saving enrichment")
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLectureSummaryNotFound
	}
	return nil
}
