package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/dberrors"
	"github.com/yigit/schoolportal/internal/pkg/logger"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// prepareIdentity fills id and timestamps for a new record.
func prepareIdentity(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// validUUID guards lookups so malformed ids read as "not found" instead of a cast error.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// PgStudentRepository handles database operations for students.
type PgStudentRepository struct {
	db Querier
}

// NewPgStudentRepository creates a new instance of PgStudentRepository.
func NewPgStudentRepository(db Querier) *PgStudentRepository {
	return &PgStudentRepository{db: db}
}

var studentColumns = []string{"id", "name", "regno", "dob", "password", "created_at", "updated_at"}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.Name, &s.Regno, &s.DOB, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student")
		return nil, err
	}
	return &s, nil
}

// CreateStudent inserts a student. A taken regno yields apperrors.ErrRegnoExists.
func (r *PgStudentRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	prepareIdentity(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	sql, args, err := psql.Insert("students").
		Columns(studentColumns...).
		Values(s.ID, s.Name, s.Regno, s.DOB, s.PasswordHash, s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_regno_key") {
			return apperrors.ErrRegnoExists
		}
		logger.Error().Err(err).Str("regno", s.Regno).Msg("Error creating student")
		return err
	}
	return nil
}

// UpdateStudent writes every mutable column of s.
func (r *PgStudentRepository) UpdateStudent(ctx context.Context, s *models.Student) error {
	if !validUUID(s.ID) {
		return apperrors.ErrStudentNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	sql, args, err := psql.Update("students").
		Set("name", s.Name).
		Set("regno", s.Regno).
		Set("dob", s.DOB).
		Set("password", s.PasswordHash).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_regno_key") {
			return apperrors.ErrRegnoExists
		}
		logger.Error().Err(err).Str("id", s.ID).Msg("Error updating student")
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// GetStudentByID retrieves a student by id.
func (r *PgStudentRepository) GetStudentByID(ctx context.Context, id string) (*models.Student, error) {
	if !validUUID(id) {
		return nil, apperrors.ErrStudentNotFound
	}
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetStudentByRegno retrieves a student by registration number.
func (r *PgStudentRepository) GetStudentByRegno(ctx context.Context, regno string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"regno": regno})
}

func (r *PgStudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).From("students").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, err
	}
	return scanStudent(r.db.QueryRow(ctx, sql, args...))
}

// PgTeacherRepository handles database operations for teachers.
type PgTeacherRepository struct {
	db Querier
}

// NewPgTeacherRepository creates a new instance of PgTeacherRepository.
func NewPgTeacherRepository(db Querier) *PgTeacherRepository {
	return &PgTeacherRepository{db: db}
}

var teacherColumns = []string{"id", "name", "regno", "password", "created_at", "updated_at"}

func scanTeacher(row pgx.Row) (*models.Teacher, error) {
	var t models.Teacher
	err := row.Scan(&t.ID, &t.Name, &t.Regno, &t.PasswordHash, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeacherNotFound
		}
		logger.Error().Err(err).Msg("Error scanning teacher")
		return nil, err
	}
	return &t, nil
}

// CreateTeacher inserts a teacher. A taken regno yields apperrors.ErrRegnoExists.
func (r *PgTeacherRepository) CreateTeacher(ctx context.Context, t *models.Teacher) error {
	prepareIdentity(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	sql, args, err := psql.Insert("teachers").
		Columns(teacherColumns...).
		Values(t.ID, t.Name, t.Regno, t.PasswordHash, t.CreatedAt, t.UpdatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create teacher SQL")
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "teachers_regno_key") {
			return apperrors.ErrRegnoExists
		}
		logger.Error().Err(err).Str("regno", t.Regno).Msg("Error creating teacher")
		return err
	}
	return nil
}

// UpdateTeacher writes every mutable column of t.
func (r *PgTeacherRepository) UpdateTeacher(ctx context.Context, t *models.Teacher) error {
	if !validUUID(t.ID) {
		return apperrors.ErrTeacherNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	sql, args, err := psql.Update("teachers").
		Set("name", t.Name).
		Set("regno", t.Regno).
		Set("password", t.PasswordHash).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update teacher SQL")
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "teachers_regno_key") {
			return apperrors.ErrRegnoExists
		}
		logger.Error().Err(err).Str("id", t.ID).Msg("Error updating teacher")
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}
	return nil
}

// GetTeacherByID retrieves a teacher by id.
func (r *PgTeacherRepository) GetTeacherByID(ctx context.Context, id string) (*models.Teacher, error) {
	if !validUUID(id) {
		return nil, apperrors.ErrTeacherNotFound
	}
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetTeacherByRegno retrieves a teacher by registration number.
func (r *PgTeacherRepository) GetTeacherByRegno(ctx context.Context, regno string) (*models.Teacher, error) {
	return r.getOne(ctx, squirrel.Eq{"regno": regno})
}

func (r *PgTeacherRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Teacher, error) {
	sql, args, err := psql.Select(teacherColumns...).From("teachers").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get teacher SQL")
		return nil, err
	}
	return scanTeacher(r.db.QueryRow(ctx, sql, args...))
}

// PgParentRepository handles database operations for parents.
type PgParentRepository struct {
	db Querier
}

// NewPgParentRepository creates a new instance of PgParentRepository.
func NewPgParentRepository(db Querier) *PgParentRepository {
	return &PgParentRepository{db: db}
}

var parentColumns = []string{"id", "student_regno", "student_dob", "password", "created_at", "updated_at"}

func scanParent(row pgx.Row) (*models.Parent, error) {
	var p models.Parent
	err := row.Scan(&p.ID, &p.StudentRegno, &p.StudentDOB, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrParentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning parent")
		return nil, err
	}
	return &p, nil
}

// CreateParent inserts a parent. The linked student is not checked.
func (r *PgParentRepository) CreateParent(ctx context.Context, p *models.Parent) error {
	prepareIdentity(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	sql, args, err := psql.Insert("parents").
		Columns(parentColumns...).
		Values(p.ID, p.StudentRegno, p.StudentDOB, p.PasswordHash, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create parent SQL")
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("studentRegno", p.StudentRegno).Msg("Error creating parent")
		return err
	}
	return nil
}

// UpdateParent writes every mutable column of p.
func (r *PgParentRepository) UpdateParent(ctx context.Context, p *models.Parent) error {
	if !validUUID(p.ID) {
		return apperrors.ErrParentNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	sql, args, err := psql.Update("parents").
		Set("student_regno", p.StudentRegno).
		Set("student_dob", p.StudentDOB).
		Set("password", p.PasswordHash).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update parent SQL")
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("id", p.ID).Msg("Error updating parent")
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrParentNotFound
	}
	return nil
}

// GetParentByID retrieves a parent by id.
func (r *PgParentRepository) GetParentByID(ctx context.Context, id string) (*models.Parent, error) {
	if !validUUID(id) {
		return nil, apperrors.ErrParentNotFound
	}
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetParentByStudentRegno retrieves the oldest parent linked to studentRegno.
func (r *PgParentRepository) GetParentByStudentRegno(ctx context.Context, studentRegno string) (*models.Parent, error) {
	return r.getOne(ctx, squirrel.Eq{"student_regno": studentRegno})
}

func (r *PgParentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Parent, error) {
	sql, args, err := psql.Select(parentColumns...).
		From("parents").
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get parent SQL")
		return nil, err
	}
	return scanParent(r.db.QueryRow(ctx, sql, args...))
}
