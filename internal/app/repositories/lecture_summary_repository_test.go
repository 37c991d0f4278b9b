package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
)

const (
	lectureID = "5f0c3a52-8d5b-4c1f-9d61-0f2a9b6f1e11"
	ownerID   = "0b7a6f0e-3c1d-4e55-a0f4-6c7b8d9e0f12"
)

var returningClause = "RETURNING " + strings.Join(lectureSummaryColumns, ", ")

func storedLecture(status models.LectureStatus) *models.LectureSummary {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := &models.LectureSummary{
		ID:         lectureID,
		Title:      "Cells",
		Subject:    "Biology",
		TeacherID:  ownerID,
		AudioFile:  models.AudioFile{URL: "/uploads/a.mp3", Filename: "a.mp3"},
		Status:     status,
		Enrichment: models.Enrichment{Status: models.EnrichmentPending},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	if status == models.LectureStatusPublished {
		at := created.Add(time.Hour)
		l.PublishedAt = &at
	}
	return l
}

func TestPublishOwnedUpdatesOnlyOwnedDraft(t *testing.T) {
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	published := storedLecture(models.LectureStatusPublished)
	published.PublishedAt = &at
	q := &fakeQuerier{rows: []pgx.Row{fakeRow{values: lectureValues(published, nil)}}}

	l, changed, err := NewPgLectureSummaryRepository(q).PublishOwned(context.Background(), lectureID, ownerID, at)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.LectureStatusPublished, l.Status)
	assert.Equal(t, at, *l.PublishedAt)

	require.Len(t, q.queries, 1)
	assert.Equal(t,
		"UPDATE lecture_summaries SET status = $1, published_at = $2, updated_at = $3 "+
			"WHERE id = $4 AND status = $5 AND teacher_id = $6 "+returningClause,
		q.queries[0].sql)
	assert.Equal(t, []any{models.LectureStatusPublished, at, at, lectureID, models.LectureStatusDraft, ownerID}, q.queries[0].args)
}

func TestPublishOwnedReturnsAlreadyPublishedUnchanged(t *testing.T) {
	published := storedLecture(models.LectureStatusPublished)
	q := &fakeQuerier{rows: []pgx.Row{
		fakeRow{err: pgx.ErrNoRows},
		fakeRow{values: lectureValues(published, nil)},
	}}

	l, changed, err := NewPgLectureSummaryRepository(q).PublishOwned(context.Background(), lectureID, ownerID, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, *published.PublishedAt, *l.PublishedAt)

	require.Len(t, q.queries, 2)
	assert.Equal(t,
		"SELECT "+strings.Join(lectureSummaryColumns, ", ")+" FROM lecture_summaries WHERE id = $1 AND teacher_id = $2",
		q.queries[1].sql)
	assert.Equal(t, []any{lectureID, ownerID}, q.queries[1].args)
}

func TestPublishOwnedNotFound(t *testing.T) {
	q := &fakeQuerier{}
	_, changed, err := NewPgLectureSummaryRepository(q).PublishOwned(context.Background(), lectureID, ownerID, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrLectureSummaryNotFound)
	assert.False(t, changed)
	assert.Len(t, q.queries, 2)

	q = &fakeQuerier{rows: []pgx.Row{fakeRow{err: errors.New("conn reset")}}}
	_, _, err = NewPgLectureSummaryRepository(q).PublishOwned(context.Background(), lectureID, ownerID, time.Now())
	assert.EqualError(t, err, "conn reset")
	assert.Len(t, q.queries, 1, "only a missing row triggers the ownership lookup")

	q = &fakeQuerier{}
	_, _, err = NewPgLectureSummaryRepository(q).PublishOwned(context.Background(), "not-a-uuid", ownerID, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrLectureSummaryNotFound)
	assert.Empty(t, q.queries)
}

func TestUpdateOwnedSetsOnlyPatchedColumns(t *testing.T) {
	title := "Cell biology"
	q := &fakeQuerier{rows: []pgx.Row{fakeRow{values: lectureValues(storedLecture(models.LectureStatusDraft), nil)}}}

	_, err := NewPgLectureSummaryRepository(q).UpdateOwned(context.Background(), lectureID, ownerID, models.LectureSummaryPatch{Title: &title})
	require.NoError(t, err)
	require.Len(t, q.queries, 1)
	assert.Equal(t,
		"UPDATE lecture_summaries SET updated_at = $1, title = $2 WHERE id = $3 AND teacher_id = $4 "+returningClause,
		q.queries[0].sql)
	assert.Equal(t, []any{title, lectureID, ownerID}, q.queries[0].args[1:])

	q = &fakeQuerier{rows: []pgx.Row{fakeRow{values: lectureValues(storedLecture(models.LectureStatusDraft), nil)}}}
	_, err = NewPgLectureSummaryRepository(q).UpdateOwned(context.Background(), lectureID, ownerID, models.LectureSummaryPatch{})
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE lecture_summaries SET updated_at = $1 WHERE id = $2 AND teacher_id = $3 "+returningClause,
		q.queries[0].sql)

	q = &fakeQuerier{}
	_, err = NewPgLectureSummaryRepository(q).UpdateOwned(context.Background(), lectureID, ownerID, models.LectureSummaryPatch{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrLectureSummaryNotFound)
}

func TestDeleteOwnedScopesToOwner(t *testing.T) {
	q := &fakeQuerier{rows: []pgx.Row{fakeRow{values: lectureValues(storedLecture(models.LectureStatusPublished), nil)}}}

	l, err := NewPgLectureSummaryRepository(q).DeleteOwned(context.Background(), lectureID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "a.mp3", l.AudioFile.Filename)
	assert.Equal(t, "DELETE FROM lecture_summaries WHERE id = $1 AND teacher_id = $2 "+returningClause, q.queries[0].sql)
	assert.Equal(t, []any{lectureID, ownerID}, q.queries[0].args)

	q = &fakeQuerier{}
	_, err = NewPgLectureSummaryRepository(q).DeleteOwned(context.Background(), lectureID, ownerID)
	assert.ErrorIs(t, err, apperrors.ErrLectureSummaryNotFound)
}

func TestSaveEnrichmentFailureKeepsEarlierOutput(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}

	err := NewPgLectureSummaryRepository(q).SaveEnrichment(context.Background(), lectureID, models.EnrichmentResult{
		Status: models.EnrichmentFailed,
		Error:  "model crashed",
	})
	require.NoError(t, err)
	require.Len(t, q.queries, 1)
	assert.Equal(t,
		"UPDATE lecture_summaries SET enrichment_status = $1, enrichment_error = $2, updated_at = $3 WHERE id = $4",
		q.queries[0].sql)
	assert.NotContains(t, q.queries[0].sql, "transcription =")
	assert.NotContains(t, q.queries[0].sql, "summary =")
	assert.Equal(t, models.EnrichmentFailed, q.queries[0].args[0])
	assert.Equal(t, "model crashed", q.queries[0].args[1])
}

func TestSaveEnrichmentDoneWritesOutput(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	text := "today we cover cells"

	err := NewPgLectureSummaryRepository(q).SaveEnrichment(context.Background(), lectureID, models.EnrichmentResult{
		Status:        models.EnrichmentDone,
		Transcription: &text,
		Summary:       &models.Summary{Overview: "cells", KeyPoints: []string{"membrane"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE lecture_summaries SET enrichment_status = $1, enrichment_error = $2, updated_at = $3, "+
			"transcription = $4, summary = $5 WHERE id = $6",
		q.queries[0].sql)
	args := q.queries[0].args
	assert.Equal(t, &text, args[3])
	summaryJSON, ok := args[4].([]byte)
	require.True(t, ok)
	assert.JSONEq(t, `{"overview":"cells","keyPoints":["membrane"],"detailedExplanation":""}`, string(summaryJSON))
	assert.Equal(t, lectureID, args[5])
}

func TestSaveEnrichmentMissingRow(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}
	err := NewPgLectureSummaryRepository(q).SaveEnrichment(context.Background(), lectureID, models.EnrichmentResult{Status: models.EnrichmentFailed})
	assert.ErrorIs(t, err, apperrors.ErrLectureSummaryNotFound)

	q = &fakeQuerier{execErr: errors.New("conn reset")}
	err = NewPgLectureSummaryRepository(q).SaveEnrichment(context.Background(), lectureID, models.EnrichmentResult{Status: models.EnrichmentFailed})
	assert.EqualError(t, err, "conn reset")
}

func TestListPublishedDecodesRows(t *testing.T) {
	l := storedLecture(models.LectureStatusPublished)
	q := &fakeQuerier{listRows: [][]any{
		lectureValues(l, []byte(`{"overview":"cells","keyPoints":["membrane"],"detailedExplanation":"long"}`)),
	}}

	items, err := NewPgLectureSummaryRepository(q).ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Summary)
	assert.Equal(t, []string{"membrane"}, items[0].Summary.KeyPoints)
	assert.Equal(t, "long", items[0].Summary.DetailedExplanation)

	assert.True(t, strings.HasSuffix(q.queries[0].sql, "FROM lecture_summaries WHERE status = $1 ORDER BY published_at DESC, id DESC"))
	assert.Equal(t, []any{models.LectureStatusPublished}, q.queries[0].args)
}

func TestListByTeacherIgnoresMalformedID(t *testing.T) {
	q := &fakeQuerier{}
	items, err := NewPgLectureSummaryRepository(q).ListByTeacher(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, q.queries)
}
