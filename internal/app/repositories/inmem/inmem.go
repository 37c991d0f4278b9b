// Package inmem provides map-backed repositories used by tests and local runs without PostgreSQL.
package inmem

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/repositories"
)

// DB is the shared in-memory store behind all repositories.
type DB struct {
	mutex    sync.RWMutex
	students map[string]*models.Student
	teachers map[string]*models.Teacher
	parents  map[string]*models.Parent
	lectures map[string]*models.LectureSummary

	// seq orders records created within the same clock tick.
	seq   int64
	order map[string]int64

	// Now is the clock used for timestamps.
	Now func() time.Time
}

// NewDB creates an empty store.
func NewDB() *DB {
	return &DB{
		students: make(map[string]*models.Student),
		teachers: make(map[string]*models.Teacher),
		parents:  make(map[string]*models.Parent),
		lectures: make(map[string]*models.LectureSummary),
		order:    make(map[string]int64),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewRepositories wires every repository to a fresh store.
func NewRepositories() (*repositories.Repositories, *DB) {
	db := NewDB()
	return &repositories.Repositories{
		StudentRepository:        &studentRepository{db: db},
		TeacherRepository:        &teacherRepository{db: db},
		ParentRepository:         &parentRepository{db: db},
		LectureSummaryRepository: &lectureSummaryRepository{db: db},
	}, db
}

// stamp assigns id, creation order and timestamps. Caller holds the write lock.
func (db *DB) stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := db.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
	db.seq++
	db.order[*id] = db.seq
}
