package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
	"github.com/yigit/schoolportal/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperrors.ErrMissingLoginFields, http.StatusBadRequest, "Please provide all required fields"},
		{apperrors.ErrInvalidDateSecret, http.StatusBadRequest, "Invalid date format. Please use DDMMYYYY format (e.g., 08052005)"},
		{apperrors.ErrInvalidRole, http.StatusBadRequest, "Invalid role"},
		{apperrors.ErrStudentNotFound, http.StatusNotFound, "Student not found"},
		{apperrors.ErrLectureSummaryNotFound, http.StatusNotFound, "Lecture summary not found"},
		{apperrors.ErrBadCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{apperrors.ErrNoToken, http.StatusUnauthorized, "No token provided"},
		{apperrors.ErrAccessDenied, http.StatusForbidden, "Access denied"},
		{apperrors.ErrRegnoExists, http.StatusConflict, "Registration number already exists"},
		{fmt.Errorf("wrapped: %w", apperrors.ErrUnsupportedAudioType), http.StatusBadRequest, "Invalid file type. Only MP3 and WAV files are allowed."},
		{fmt.Errorf("%w: disk full", apperrors.ErrPersistenceFailure), http.StatusInternalServerError, "Server error"},
		{errors.New("boom"), http.StatusInternalServerError, "Server error"},
	}
	for _, tc := range cases {
		status, message := StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.message, message, tc.err.Error())
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", TokenIssuer: "test"})
	require.NoError(t, err)
	m := NewAuthMiddleware(jwtService)

	r := gin.New()
	r.GET("/any", m.JWTAuth(), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		role, _ := CurrentRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/teacher", m.JWTAuth(), m.RoleRequired(models.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwtService
}

func TestJWTAuth(t *testing.T) {
	r, jwtService := newAuthRouter(t)
	token, _, err := jwtService.Issue(&models.Student{ID: "s1", Name: "A"}, "A")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"s1","role":"Student"}`, w.Body.String())

	for header, want := range map[string]string{
		"":                   "No token provided",
		"Basic abc":          "No token provided",
		"Bearer not.a.token": "Invalid token",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/any", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, want, decodeMessage(t, w), header)
	}
}

func TestRoleRequired(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	studentToken, _, err := jwtService.Issue(&models.Student{ID: "s1"}, "")
	require.NoError(t, err)
	teacherToken, _, err := jwtService.Issue(&models.Teacher{ID: "t1"}, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teacher", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", decodeMessage(t, w))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/teacher", nil)
	req.Header.Set("Authorization", "Bearer "+teacherToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTokenBucket(t *testing.T) {
	l := NewTokenBucket(2, 60)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "ip")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "other")
	assert.True(t, ok)

	now = now.Add(time.Second)
	ok, _ = l.Allow(ctx, "ip")
	assert.True(t, ok)
}

func TestTokenBucketEvictsIdleKeys(t *testing.T) {
	l := NewTokenBucket(2, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		ok, err := l.Allow(ctx, fmt.Sprintf("10.0.0.%d", i))
		require.NoError(t, err)
		assert.True(t, ok)
	}
	for i := 0; i < 2; i++ {
		_, _ = l.Allow(ctx, "busy")
	}
	ok, _ := l.Allow(ctx, "busy")
	require.False(t, ok)
	assert.Len(t, l.state, 101)

	// Two tokens at one a minute: full again after two minutes.
	now = now.Add(2 * time.Minute)
	ok, _ = l.Allow(ctx, "fresh")
	assert.True(t, ok)
	assert.Len(t, l.state, 1)
	assert.Contains(t, l.state, "fresh")

	ok, _ = l.Allow(ctx, "busy")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "busy")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "busy")
	assert.False(t, ok)
}

func TestTokenBucketKeepsActiveKeys(t *testing.T) {
	l := NewTokenBucket(2, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "ip")
	_, _ = l.Allow(ctx, "ip")

	now = now.Add(90 * time.Second)
	ok, _ := l.Allow(ctx, "ip")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "ip")
	assert.False(t, ok, "a partly refilled bucket must survive the sweep")
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) { return false, errors.New("down") }

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(NewTokenBucket(1, 1)), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/open", RateLimit(failingLimiter{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, decodeMessage(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
