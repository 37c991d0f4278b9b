package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
)

func TestLoginStudent(t *testing.T) {
	env := newTestEnv(t)
	s := env.student(t, "Ada", "S100", "08052005")

	resp, err := env.auth.Login(context.Background(), &dto.LoginRequest{Regno: "S100", Password: "08052005", Role: "Student"})
	require.NoError(t, err)
	assert.Equal(t, dto.MemberSummary{ID: s.ID, Name: "Ada", Regno: "S100", Role: models.RoleStudent}, resp.User)

	claims, err := env.jwt.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.ID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "Ada", claims.Name)
}

func TestLoginTeacherArbitraryPassword(t *testing.T) {
	env := newTestEnv(t)
	tc := env.teacher(t, "Mr T", "T1", "not-a-date")

	resp, err := env.auth.Login(context.Background(), &dto.LoginRequest{Regno: "T1", Password: "not-a-date", Role: "Teacher"})
	require.NoError(t, err)
	assert.Equal(t, dto.MemberSummary{ID: tc.ID, Name: "Mr T", Regno: "T1", Role: models.RoleTeacher}, resp.User)

	_, err = env.auth.Login(context.Background(), &dto.LoginRequest{Regno: "T1", Password: "wrong", Role: "Teacher"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestLoginParentResolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Login(ctx, &dto.LoginRequest{Regno: "S1", Password: "01012006", Role: "Parent"})
	assert.Equal(t, apperrors.ErrStudentNotFound, err)

	env.student(t, "Kid", "S1", "01012006")
	_, err = env.auth.Login(ctx, &dto.LoginRequest{Regno: "S1", Password: "01012006", Role: "Parent"})
	assert.Equal(t, apperrors.ErrParentNotFound, err)

	p := env.parent(t, "S1", "01012006")
	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Regno: "S1", Password: "01012006", Role: "Parent"})
	require.NoError(t, err)
	assert.Equal(t, dto.ParentSummary{ID: p.ID, StudentRegno: "S1", Role: models.RoleParent}, resp.User)

	claims, err := env.jwt.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, claims.Role)
	assert.Empty(t, claims.Name)
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)
	env.student(t, "Ada", "S100", "08052005")
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.LoginRequest
		want error
	}{
		{"missing regno", dto.LoginRequest{Password: "08052005", Role: "Student"}, apperrors.ErrMissingLoginFields},
		{"missing password", dto.LoginRequest{Regno: "S100", Role: "Student"}, apperrors.ErrMissingLoginFields},
		{"missing role", dto.LoginRequest{Regno: "S100", Password: "08052005"}, apperrors.ErrMissingLoginFields},
		{"unknown role", dto.LoginRequest{Regno: "S100", Password: "08052005", Role: "Admin"}, apperrors.ErrInvalidRole},
		{"student non-date secret", dto.LoginRequest{Regno: "S100", Password: "secret", Role: "Student"}, apperrors.ErrInvalidDateSecret},
		{"parent impossible date", dto.LoginRequest{Regno: "S100", Password: "31042020", Role: "Parent"}, apperrors.ErrInvalidDateSecret},
		{"unknown student", dto.LoginRequest{Regno: "S999", Password: "08052005", Role: "Student"}, apperrors.ErrStudentNotFound},
		{"unknown teacher", dto.LoginRequest{Regno: "T999", Password: "x", Role: "Teacher"}, apperrors.ErrTeacherNotFound},
		{"wrong dob", dto.LoginRequest{Regno: "S100", Password: "09052005", Role: "Student"}, apperrors.ErrBadCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			resp, err := env.auth.Login(ctx, &req)
			assert.Nil(t, resp)
			assert.Equal(t, tc.want, err)
		})
	}
}

func TestLoginFollowsDOBChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.student(t, "Ada", "S100", "08052005")

	_, err := env.accounts.UpdateStudent(ctx, s.ID, &dto.UpdateStudentRequest{DOB: strPtr("09062005")})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Regno: "S100", Password: "08052005", Role: "Student"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Regno: "S100", Password: "09062005", Role: "Student"})
	assert.NoError(t, err)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.student(t, "Ada", "S100", "08052005")
	p := env.parent(t, "S100", "08052005")

	profile, err := env.auth.Me(ctx, s.ID, models.RoleStudent)
	require.NoError(t, err)
	sp, ok := profile.(dto.StudentProfile)
	require.True(t, ok)
	assert.Equal(t, "08052005", sp.DOB)
	assert.Equal(t, models.RoleStudent, sp.Role)

	profile, err = env.auth.Me(ctx, p.ID, models.RoleParent)
	require.NoError(t, err)
	pp, ok := profile.(dto.ParentProfile)
	require.True(t, ok)
	assert.Equal(t, "S100", pp.StudentRegno)

	_, err = env.auth.Me(ctx, "missing", models.RoleTeacher)
	assert.Equal(t, apperrors.ErrUserNotFound, err)

	_, err = env.auth.Me(ctx, s.ID, models.Role("Admin"))
	assert.Equal(t, apperrors.ErrInvalidRole, err)
}
