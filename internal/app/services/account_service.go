package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/auth"
)

// AccountService administers credential records. Every write goes through the
// password policy so stored secrets stay hashed and follow the date of birth.
type AccountService interface {
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error)
	CreateTeacher(ctx context.Context, req *dto.CreateTeacherRequest) (*models.Teacher, error)
	CreateParent(ctx context.Context, req *dto.CreateParentRequest) (*models.Parent, error)
	UpdateStudent(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*models.Student, error)
	UpdateTeacher(ctx context.Context, id string, req *dto.UpdateTeacherRequest) (*models.Teacher, error)
	UpdateParent(ctx context.Context, id string, req *dto.UpdateParentRequest) (*models.Parent, error)
	// SetPassword replaces the secret of the identity found by login regno.
	SetPassword(ctx context.Context, role models.Role, regno, password string) error
}

type accountServiceImpl struct {
	repos    *repositories.Repositories
	resolver IdentityResolver
	policy   *auth.PasswordPolicy
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(repos *repositories.Repositories, policy *auth.PasswordPolicy, logger zerolog.Logger) AccountService {
	return &accountServiceImpl{
		repos:    repos,
		resolver: NewIdentityResolver(repos.StudentRepository, repos.TeacherRepository, repos.ParentRepository),
		policy:   policy,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *accountServiceImpl) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.NewCustomError(apperrors.ErrMissingField, dto.HandleValidationError(err))
	}
	return nil
}

// nonEmpty treats an empty explicit password as absent.
func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

// applySecret runs the policy and reports validation failures as bad requests.
func (s *accountServiceImpl) applySecret(w auth.SecretWrite) (string, bool, error) {
	w.Password = nonEmpty(w.Password)
	hash, changed, err := s.policy.Apply(w)
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			return "", false, apperrors.NewCustomError(apperrors.ErrInvalidFormat, verr.Error())
		}
		return "", false, fmt.Errorf("hash secret: %w", err)
	}
	return hash, changed, nil
}

func (s *accountServiceImpl) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	hash, _, err := s.applySecret(auth.SecretWrite{Password: req.Password, DOB: &req.DOB, DOBField: auth.FieldDOB})
	if err != nil {
		return nil, err
	}

	student := &models.Student{Name: req.Name, Regno: req.Regno, DOB: req.DOB, PasswordHash: hash}
	if err := s.repos.StudentRepository.CreateStudent(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", student.ID).Str("regno", student.Regno).Msg("Student created")
	return student, nil
}

func (s *accountServiceImpl) CreateTeacher(ctx context.Context, req *dto.CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	hash, _, err := s.applySecret(auth.SecretWrite{Password: &req.Password})
	if err != nil {
		return nil, err
	}

	teacher := &models.Teacher{Name: req.Name, Regno: req.Regno, PasswordHash: hash}
	if err := s.repos.TeacherRepository.CreateTeacher(ctx, teacher); err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", teacher.ID).Str("regno", teacher.Regno).Msg("Teacher created")
	return teacher, nil
}

func (s *accountServiceImpl) CreateParent(ctx context.Context, req *dto.CreateParentRequest) (*models.Parent, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	hash, _, err := s.applySecret(auth.SecretWrite{Password: req.Password, DOB: &req.StudentDOB, DOBField: auth.FieldStudentDOB})
	if err != nil {
		return nil, err
	}

	parent := &models.Parent{StudentRegno: req.StudentRegno, StudentDOB: req.StudentDOB, PasswordHash: hash}
	if err := s.repos.ParentRepository.CreateParent(ctx, parent); err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", parent.ID).Str("studentRegno", parent.StudentRegno).Msg("Parent created")
	return parent, nil
}

// modified returns v when it differs from current, nil otherwise.
func modified(v *string, current string) *string {
	if v == nil || *v == current {
		return nil
	}
	return v
}

func (s *accountServiceImpl) UpdateStudent(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.repos.StudentRepository.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newDOB := modified(req.DOB, student.DOB)
	hash, rotated, err := s.applySecret(auth.SecretWrite{Password: req.Password, DOB: newDOB, DOBField: auth.FieldDOB})
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Regno != nil {
		student.Regno = *req.Regno
	}
	if newDOB != nil {
		student.DOB = *newDOB
	}
	if rotated {
		student.PasswordHash = hash
	}

	if err := s.repos.StudentRepository.UpdateStudent(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *accountServiceImpl) UpdateTeacher(ctx context.Context, id string, req *dto.UpdateTeacherRequest) (*models.Teacher, error) {
	teacher, err := s.repos.TeacherRepository.GetTeacherByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hash, rotated, err := s.applySecret(auth.SecretWrite{Password: req.Password})
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		teacher.Name = *req.Name
	}
	if req.Regno != nil {
		teacher.Regno = *req.Regno
	}
	if rotated {
		teacher.PasswordHash = hash
	}

	if err := s.repos.TeacherRepository.UpdateTeacher(ctx, teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

func (s *accountServiceImpl) UpdateParent(ctx context.Context, id string, req *dto.UpdateParentRequest) (*models.Parent, error) {
	parent, err := s.repos.ParentRepository.GetParentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newDOB := modified(req.StudentDOB, parent.StudentDOB)
	hash, rotated, err := s.applySecret(auth.SecretWrite{Password: req.Password, DOB: newDOB, DOBField: auth.FieldStudentDOB})
	if err != nil {
		return nil, err
	}
	if req.StudentRegno != nil {
		parent.StudentRegno = *req.StudentRegno
	}
	if newDOB != nil {
		parent.StudentDOB = *newDOB
	}
	if rotated {
		parent.PasswordHash = hash
	}

	if err := s.repos.ParentRepository.UpdateParent(ctx, parent); err != nil {
		return nil, err
	}
	return parent, nil
}

func (s *accountServiceImpl) SetPassword(ctx context.Context, role models.Role, regno, password string) error {
	if password == "" {
		return apperrors.NewCustomError(apperrors.ErrMissingField, "password is required")
	}
	identity, err := s.resolver.Resolve(ctx, role, regno)
	if err != nil {
		return err
	}

	switch u := identity.(type) {
	case *models.Student:
		_, err = s.UpdateStudent(ctx, u.ID, &dto.UpdateStudentRequest{Password: &password})
	case *models.Teacher:
		_, err = s.UpdateTeacher(ctx, u.ID, &dto.UpdateTeacherRequest{Password: &password})
	case *models.Parent:
		_, err = s.UpdateParent(ctx, u.ID, &dto.UpdateParentRequest{Password: &password})
	}
	if err == nil {
		s.logger.Info().Str("role", string(role)).Str("regno", regno).Msg("Password reset")
	}
	return err
}
