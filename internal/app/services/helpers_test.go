package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/app/repositories"
	"github.com/yigit/schoolportal/internal/app/repositories/inmem"
	"github.com/yigit/schoolportal/internal/pkg/auth"
	"github.com/yigit/schoolportal/internal/pkg/filestorage"
	"github.com/yigit/schoolportal/internal/pkg/queue"
	"github.com/yigit/schoolportal/internal/pkg/transcription"
)

type testEnv struct {
	repos    *repositories.Repositories
	db       *inmem.DB
	policy   *auth.PasswordPolicy
	jwt      *auth.JWTService
	storage  *filestorage.LocalStorage
	jobs     *queue.InMemory
	accounts AccountService
	auth     AuthService
	lectures LectureSummaryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos, db := inmem.NewRepositories()
	policy := auth.NewPasswordPolicy(auth.MinBcryptCost)
	jwtService, err := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "schoolportal.test"})
	require.NoError(t, err)
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	jobs := queue.NewInMemory(8)
	log := zerolog.Nop()

	resolver := NewIdentityResolver(repos.StudentRepository, repos.TeacherRepository, repos.ParentRepository)
	return &testEnv{
		repos:    repos,
		db:       db,
		policy:   policy,
		jwt:      jwtService,
		storage:  storage,
		jobs:     jobs,
		accounts: NewAccountService(repos, policy, log),
		auth:     NewAuthService(resolver, policy, jwtService, log),
		lectures: NewLectureSummaryService(repos.LectureSummaryRepository, storage, jobs, log),
	}
}

func strPtr(s string) *string { return &s }

func (e *testEnv) student(t *testing.T, name, regno, dob string) *models.Student {
	t.Helper()
	s, err := e.accounts.CreateStudent(context.Background(), &dto.CreateStudentRequest{Name: name, Regno: regno, DOB: dob})
	require.NoError(t, err)
	return s
}

func (e *testEnv) teacher(t *testing.T, name, regno, password string) *models.Teacher {
	t.Helper()
	tc, err := e.accounts.CreateTeacher(context.Background(), &dto.CreateTeacherRequest{Name: name, Regno: regno, Password: password})
	require.NoError(t, err)
	return tc
}

func (e *testEnv) parent(t *testing.T, studentRegno, dob string) *models.Parent {
	t.Helper()
	p, err := e.accounts.CreateParent(context.Background(), &dto.CreateParentRequest{StudentRegno: studentRegno, StudentDOB: dob})
	require.NoError(t, err)
	return p
}

func audioFile(t *testing.T, name, contentType string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="audio"; filename="` + name + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("RIFF fake audio"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["audio"][0]
}

// fakeTranscriber returns a fixed result or error and records the paths it saw.
type fakeTranscriber struct {
	result *transcription.Result
	err    error
	paths  []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioPath string) (*transcription.Result, error) {
	f.paths = append(f.paths, audioPath)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
