package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/opavlenko/taskhub/internal/common"
	"github.com/opavlenko/taskhub/internal/logging"
	"github.com/opavlenko/taskhub/internal/server/models"
	"github.com/opavlenko/taskhub/internal/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth returns canned results per method; unset fields mean failure.
type stubAuth struct {
	registerUser *models.User
	registerErr  error

	loginPair *services.TokenPair
	loginErr  error

	refreshPair *services.TokenPair
	refreshErr  error

	logoutErr error

	verifySubject string
	verifyErr     error

	meUser *models.User
	meErr  error
}

func (a *stubAuth) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return a.registerUser, a.registerErr
}

func (a *stubAuth) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return a.loginPair, a.loginErr
}

func (a *stubAuth) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return a.refreshPair, a.refreshErr
}

func (a *stubAuth) Logout(ctx context.Context, refreshToken string) error {
	return a.logoutErr
}

func (a *stubAuth) VerifyAccessToken(token string) (string, error) {
	if a.verifyErr != nil {
		return "", a.verifyErr
	}
	return a.verifySubject, nil
}

func (a *stubAuth) Me(ctx context.Context, userID string) (*models.User, error) {
	return a.meUser, a.meErr
}

type stubTodos struct {
	todo    *models.Todo
	list    []*models.Todo
	stats   *services.TodoStats
	err     error
	gotID   string
	gotUser string
}

func (t *stubTodos) Create(ctx context.Context, ownerID string, in services.TodoInput) (*models.Todo, error) {
	t.gotUser = ownerID
	return t.todo, t.err
}

func (t *stubTodos) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	t.gotUser, t.gotID = ownerID, id
	return t.todo, t.err
}

func (t *stubTodos) List(ctx context.Context, ownerID string, completed *bool, limit, offset int) ([]*models.Todo, error) {
	t.gotUser = ownerID
	return t.list, t.err
}

func (t *stubTodos) Update(ctx context.Context, ownerID, id string, in services.TodoInput) (*models.Todo, error) {
	t.gotUser, t.gotID = ownerID, id
	return t.todo, t.err
}

func (t *stubTodos) Delete(ctx context.Context, ownerID, id string) error {
	t.gotUser, t.gotID = ownerID, id
	return t.err
}

func (t *stubTodos) Toggle(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	t.gotUser, t.gotID = ownerID, id
	return t.todo, t.err
}

func (t *stubTodos) Stats(ctx context.Context, ownerID string) (*services.TodoStats, error) {
	t.gotUser = ownerID
	return t.stats, t.err
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestServer(t *testing.T, auth AuthService, todos TodoService) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewServer(auth, todos, db, testLogger()), mock
}

func doJSON(t *testing.T, s *Server, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

var errBoom = common.ErrorInternal

func activeUser() *models.User {
	return &models.User{ID: "u1", Username: "alice", Email: "alice@example.com", IsActive: true}
}

func sampleTodo() *models.Todo {
	return &models.Todo{ID: "t1", OwnerID: "u1", Title: "buy milk", Priority: models.PriorityMedium}
}
