package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/schoolportal/internal/app/models"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so repositories can run inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentRepository stores student identities. Lookups return apperrors.ErrStudentNotFound.
type StudentRepository interface {
	CreateStudent(ctx context.Context, s *models.Student) error
	UpdateStudent(ctx context.Context, s *models.Student) error
	GetStudentByID(ctx context.Context, id string) (*models.Student, error)
	GetStudentByRegno(ctx context.Context, regno string) (*models.Student, error)
}

// TeacherRepository stores teacher identities. Lookups return apperrors.ErrTeacherNotFound.
type TeacherRepository interface {
	CreateTeacher(ctx context.Context, t *models.Teacher) error
	UpdateTeacher(ctx context.Context, t *models.Teacher) error
	GetTeacherByID(ctx context.Context, id string) (*models.Teacher, error)
	GetTeacherByRegno(ctx context.Context, regno string) (*models.Teacher, error)
}

// ParentRepository stores parent identities. Lookups return apperrors.ErrParentNotFound.
// Several parents may share a student regno; GetParentByStudentRegno returns the oldest.
type ParentRepository interface {
	CreateParent(ctx context.Context, p *models.Parent) error
	UpdateParent(ctx context.Context, p *models.Parent) error
	GetParentByID(ctx context.Context, id string) (*models.Parent, error)
	GetParentByStudentRegno(ctx context.Context, studentRegno string) (*models.Parent, error)
}

// LectureSummaryRepository stores lecture summaries. Every mutation scoped by teacher
// folds ownership into the lookup, so foreign and unknown ids both yield
// apperrors.ErrLectureSummaryNotFound.
type LectureSummaryRepository interface {
	CreateLectureSummary(ctx context.Context, l *models.LectureSummary) error
	GetLectureSummaryByID(ctx context.Context, id string) (*models.LectureSummary, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*models.LectureSummary, error)
	ListPublished(ctx context.Context) ([]*models.LectureSummary, error)
	// PublishOwned moves a draft to published stamping publishedAt with at.
	// A summary that is already published is returned as is with changed=false.
	PublishOwned(ctx context.Context, id, teacherID string, at time.Time) (l *models.LectureSummary, changed bool, err error)
	UpdateOwned(ctx context.Context, id, teacherID string, patch models.LectureSummaryPatch) (*models.LectureSummary, error)
	DeleteOwned(ctx context.Context, id, teacherID string) (*models.LectureSummary, error)
	SaveEnrichment(ctx context.Context, id string, result models.EnrichmentResult) error
}

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository        StudentRepository
	TeacherRepository        TeacherRepository
	ParentRepository         ParentRepository
	LectureSummaryRepository LectureSummaryRepository
}

// NewRepositories initializes the PostgreSQL repositories over db.
func NewRepositories(db Querier) *Repositories {
	return &Repositories{
		StudentRepository:        NewPgStudentRepository(db),
		TeacherRepository:        NewPgTeacherRepository(db),
		ParentRepository:         NewPgParentRepository(db),
		LectureSummaryRepository: NewPgLectureSummaryRepository(db),
	}
}
