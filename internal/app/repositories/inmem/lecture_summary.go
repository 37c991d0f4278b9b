package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
)

type lectureSummaryRepository struct {
	db *DB
}

func cloneLecture(l *models.LectureSummary) *models.LectureSummary {
	cp := *l
	if l.Transcription != nil {
		t := *l.Transcription
		cp.Transcription = &t
	}
	if l.Summary != nil {
		s := *l.Summary
		s.KeyPoints = append([]string(nil), l.Summary.KeyPoints...)
		cp.Summary = &s
	}
	if l.PublishedAt != nil {
		at := *l.PublishedAt
		cp.PublishedAt = &at
	}
	return &cp
}

func (r *lectureSummaryRepository) CreateLectureSummary(_ context.Context, l *models.LectureSummary) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.stamp(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if l.Status == "" {
		l.Status = models.LectureStatusDraft
	}
	if l.Enrichment.Status == "" {
		l.Enrichment.Status = models.EnrichmentPending
	}
	r.db.lectures[l.ID] = cloneLecture(l)
	return nil
}

func (r *lectureSummaryRepository) GetLectureSummaryByID(_ context.Context, id string) (*models.LectureSummary, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if l, ok := r.db.lectures[id]; ok {
		return cloneLecture(l), nil
	}
	return nil, apperrors.ErrLectureSummaryNotFound
}

// owned returns the stored record if teacherID owns it. Caller holds the lock.
func (r *lectureSummaryRepository) owned(id, teacherID string) (*models.LectureSummary, error) {
	l, ok := r.db.lectures[id]
	if !ok || l.TeacherID != teacherID {
		return nil, apperrors.ErrLectureSummaryNotFound
	}
	return l, nil
}

func (r *lectureSummaryRepository) filter(keep func(*models.LectureSummary) bool) []*models.LectureSummary {
	items := make([]*models.LectureSummary, 0)
	for _, l := range r.db.lectures {
		if keep(l) {
			items = append(items, cloneLecture(l))
		}
	}
	return items
}

func (r *lectureSummaryRepository) ListByTeacher(_ context.Context, teacherID string) ([]*models.LectureSummary, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	items := r.filter(func(l *models.LectureSummary) bool { return l.TeacherID == teacherID })
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return r.db.order[items[i].ID] > r.db.order[items[j].ID]
	})
	return items, nil
}

func (r *lectureSummaryRepository) ListPublished(_ context.Context) ([]*models.LectureSummary, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	items := r.filter(func(l *models.LectureSummary) bool { return l.IsPublished() })
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		if !a.Equal(*b) {
			return a.After(*b)
		}
		return r.db.order[items[i].ID] > r.db.order[items[j].ID]
	})
	return items, nil
}

func (r *lectureSummaryRepository) PublishOwned(_ context.Context, id, teacherID string, at time.Time) (*models.LectureSummary, bool, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	l, err := r.owned(id, teacherID)
	if err != nil {
		return nil, false, err
	}
	if l.IsPublished() {
		return cloneLecture(l), false, nil
	}
	l.Status = models.LectureStatusPublished
	l.PublishedAt = &at
	l.UpdatedAt = at
	return cloneLecture(l), true, nil
}

func (r *lectureSummaryRepository) UpdateOwned(_ context.Context, id, teacherID string, patch models.LectureSummaryPatch) (*models.LectureSummary, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	l, err := r.owned(id, teacherID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Subject != nil {
		l.Subject = *patch.Subject
	}
	l.UpdatedAt = r.db.Now()
	return cloneLecture(l), nil
}

func (r *lectureSummaryRepository) DeleteOwned(_ context.Context, id, teacherID string) (*models.LectureSummary, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	l, err := r.owned(id, teacherID)
	if err != nil {
		return nil, err
	}
	delete(r.db.lectures, id)
	return l, nil
}

func (r *lectureSummaryRepository) SaveEnrichment(_ context.Context, id string, result models.EnrichmentResult) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	l, ok := r.db.lectures[id]
	if !ok {
		return apperrors.ErrLectureSummaryNotFound
	}
	l.Enrichment = models.Enrichment{Status: result.Status, Error: result.Error}
	if result.Status == models.EnrichmentDone {
		l.Transcription = result.Transcription
		l.Summary = result.Summary
		l = cloneLecture(l)
		r.db.lectures[id] = l
	}
	l.UpdatedAt = r.db.Now()
	return nil
}
