package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/auth"
	"github.com/yigit/schoolportal/internal/pkg/metrics"
)

// AuthService defines the interface for login and session profile operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID string, role models.Role) (interface{}, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	resolver   IdentityResolver
	policy     *auth.PasswordPolicy
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	resolver IdentityResolver,
	policy *auth.PasswordPolicy,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		resolver:   resolver,
		policy:     policy,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks the submitted secret against the resolved identity and issues a session token.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	resp, err := s.login(ctx, req)
	metrics.LoginAttempts.WithLabelValues(roleLabel(req), loginResult(err)).Inc()
	return resp, err
}

func (s *authServiceImpl) login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req == nil || req.Regno == "" || req.Password == "" || req.Role == "" {
		return nil, apperrors.ErrMissingLoginFields
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.ErrInvalidRole
	}

	// The portal sends the date of birth as the secret for these roles.
	if role.UsesDateSecret() && !auth.IsValidDate(req.Password) {
		return nil, apperrors.ErrInvalidDateSecret
	}

	identity, err := s.resolver.Resolve(ctx, role, req.Regno)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Error().Err(err).Str("role", string(role)).Msg("Identity lookup failed")
			return nil, fmt.Errorf("resolve %s: %w", role, err)
		}
		return nil, err
	}

	if !s.policy.Compare(identity.SecretHash(), req.Password) {
		s.logger.Info().Str("role", string(role)).Str("id", identity.IdentityID()).Msg("Login rejected: credential mismatch")
		return nil, apperrors.ErrBadCredentials
	}

	token, expiresAt, err := s.jwtService.Issue(identity, displayName(identity))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue token")
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("role", string(role)).Str("id", identity.IdentityID()).Msg("Login succeeded")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewLoginUser(identity),
	}, nil
}

// Me returns the profile of the session's identity without its secret.
func (s *authServiceImpl) Me(ctx context.Context, userID string, role models.Role) (interface{}, error) {
	identity, err := s.resolver.Lookup(ctx, role, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewProfile(identity), nil
}

func displayName(identity models.Identity) string {
	switch u := identity.(type) {
	case *models.Student:
		return u.Name
	case *models.Teacher:
		return u.Name
	}
	return ""
}

func roleLabel(req *dto.LoginRequest) string {
	if req == nil {
		return "unknown"
	}
	if role, err := models.ParseRole(req.Role); err == nil {
		return string(role)
	}
	return "unknown"
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperrors.ErrMissingField):
		return "missing_field"
	case errors.Is(err, apperrors.ErrInvalidFormat), errors.Is(err, apperrors.ErrBadRequest):
		return "invalid_format"
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return "invalid_credentials"
	}
	return "error"
}
