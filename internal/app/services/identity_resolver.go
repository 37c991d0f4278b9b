package services

import (
	"context"

	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
)

// IdentityResolver finds the credential record behind a login or a session.
type IdentityResolver interface {
	// Resolve looks an identity up by the regno typed at login. For parents
	// regno is the child's regno and the student must exist first.
	Resolve(ctx context.Context, role models.Role, regno string) (models.Identity, error)
	// Lookup loads the identity a session token points at.
	Lookup(ctx context.Context, role models.Role, id string) (models.Identity, error)
}

type identityResolverImpl struct {
	students repositories.StudentRepository
	teachers repositories.TeacherRepository
	parents  repositories.ParentRepository
}

// NewIdentityResolver creates a new IdentityResolver
func NewIdentityResolver(
	students repositories.StudentRepository,
	teachers repositories.TeacherRepository,
	parents repositories.ParentRepository,
) IdentityResolver {
	return &identityResolverImpl{students: students, teachers: teachers, parents: parents}
}

func (r *identityResolverImpl) Resolve(ctx context.Context, role models.Role, regno string) (models.Identity, error) {
	switch role {
	case models.RoleStudent:
		return identityOrNil(r.students.GetStudentByRegno(ctx, regno))
	case models.RoleTeacher:
		return identityOrNil(r.teachers.GetTeacherByRegno(ctx, regno))
	case models.RoleParent:
		if _, err := r.students.GetStudentByRegno(ctx, regno); err != nil {
			return nil, err
		}
		return identityOrNil(r.parents.GetParentByStudentRegno(ctx, regno))
	}
	return nil, apperrors.ErrInvalidRole
}

func (r *identityResolverImpl) Lookup(ctx context.Context, role models.Role, id string) (models.Identity, error) {
	var (
		identity models.Identity
		err      error
	)
	switch role {
	case models.RoleStudent:
		identity, err = identityOrNil(r.students.GetStudentByID(ctx, id))
	case models.RoleTeacher:
		identity, err = identityOrNil(r.teachers.GetTeacherByID(ctx, id))
	case models.RoleParent:
		identity, err = identityOrNil(r.parents.GetParentByID(ctx, id))
	default:
		return nil, apperrors.ErrInvalidRole
	}
	if apperrors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	return identity, err
}

// identityOrNil keeps a typed nil pointer from becoming a non-nil interface.
func identityOrNil[T models.Identity](v T, err error) (models.Identity, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
