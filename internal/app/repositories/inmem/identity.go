package inmem

import (
	"context"

	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
)

type studentRepository struct {
	db *DB
}

func (r *studentRepository) CreateStudent(_ context.Context, s *models.Student) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, existing := range r.db.students {
		if existing.Regno == s.Regno {
			return apperrors.ErrRegnoExists
		}
	}
	r.db.stamp(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	cp := *s
	r.db.students[s.ID] = &cp
	return nil
}

func (r *studentRepository) UpdateStudent(_ context.Context, s *models.Student) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.students[s.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	for id, existing := range r.db.students {
		if id != s.ID && existing.Regno == s.Regno {
			return apperrors.ErrRegnoExists
		}
	}
	s.UpdatedAt = r.db.Now()
	cp := *s
	r.db.students[s.ID] = &cp
	return nil
}

func (r *studentRepository) GetStudentByID(_ context.Context, id string) (*models.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if s, ok := r.db.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *studentRepository) GetStudentByRegno(_ context.Context, regno string) (*models.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, s := range r.db.students {
		if s.Regno == regno {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

type teacherRepository struct {
	db *DB
}

func (r *teacherRepository) CreateTeacher(_ context.Context, t *models.Teacher) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, existing := range r.db.teachers {
		if existing.Regno == t.Regno {
			return apperrors.ErrRegnoExists
		}
	}
	r.db.stamp(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	cp := *t
	r.db.teachers[t.ID] = &cp
	return nil
}

func (r *teacherRepository) UpdateTeacher(_ context.Context, t *models.Teacher) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.teachers[t.ID]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	for id, existing := range r.db.teachers {
		if id != t.ID && existing.Regno == t.Regno {
			return apperrors.ErrRegnoExists
		}
	}
	t.UpdatedAt = r.db.Now()
	cp := *t
	r.db.teachers[t.ID] = &cp
	return nil
}

func (r *teacherRepository) GetTeacherByID(_ context.Context, id string) (*models.Teacher, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if t, ok := r.db.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, apperrors.ErrTeacherNotFound
}

func (r *teacherRepository) GetTeacherByRegno(_ context.Context, regno string) (*models.Teacher, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, t := range r.db.teachers {
		if t.Regno == regno {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperrors.ErrTeacherNotFound
}

type parentRepository struct {
	db *DB
}

func (r *parentRepository) CreateParent(_ context.Context, p *models.Parent) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	cp := *p
	r.db.parents[p.ID] = &cp
	return nil
}

func (r *parentRepository) UpdateParent(_ context.Context, p *models.Parent) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.parents[p.ID]; !ok {
		return apperrors.ErrParentNotFound
	}
	p.UpdatedAt = r.db.Now()
	cp := *p
	r.db.parents[p.ID] = &cp
	return nil
}

func (r *parentRepository) GetParentByID(_ context.Context, id string) (*models.Parent, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if p, ok := r.db.parents[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperrors.ErrParentNotFound
}

// GetParentByStudentRegno returns the earliest created parent for studentRegno.
func (r *parentRepository) GetParentByStudentRegno(_ context.Context, studentRegno string) (*models.Parent, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var found *models.Parent
	for _, p := range r.db.parents {
		if p.StudentRegno != studentRegno {
			continue
		}
		if found == nil || r.db.order[p.ID] < r.db.order[found.ID] {
			found = p
		}
	}
	if found == nil {
		return nil, apperrors.ErrParentNotFound
	}
	cp := *found
	return &cp, nil
}
