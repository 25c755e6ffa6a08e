package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/opavlenko/taskhub/internal/common"
	"github.com/opavlenko/taskhub/internal/dbx"
	"github.com/opavlenko/taskhub/internal/server/models"
	refreshtokensrepo "github.com/opavlenko/taskhub/internal/server/repositories/refreshtokens"
	todosrepo "github.com/opavlenko/taskhub/internal/server/repositories/todos"
	usersrepo "github.com/opavlenko/taskhub/internal/server/repositories/users"
)

// --- in-memory fakes shared by the service tests ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("u%d", f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	mu   sync.Mutex
	rows map[string]*models.RefreshToken

	insertErr  error
	consumeErr error
	revokeErr  error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{rows: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Insert(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[tokenID] = &models.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		Status:    models.RefreshTokenActive,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, tokenID string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[tokenID]; ok {
		return row, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) TryConsume(ctx context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return false, f.consumeErr
	}
	row, ok := f.rows[tokenID]
	if !ok || row.Status != models.RefreshTokenActive || !row.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	row.Status = models.RefreshTokenConsumed
	return true, nil
}

func (f *fakeRefreshRepo) Revoke(ctx context.Context, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeErr != nil {
		return f.revokeErr
	}
	if row, ok := f.rows[tokenID]; ok {
		row.Status = models.RefreshTokenRevoked
	}
	return nil
}

func (f *fakeRefreshRepo) IsActive(ctx context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[tokenID]
	return ok && row.Status == models.RefreshTokenActive && row.ExpiresAt.After(time.Now()), nil
}

func (f *fakeRefreshRepo) PurgeDead(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, row := range f.rows {
		if row.ExpiresAt.Before(now) || row.Status != models.RefreshTokenActive {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeRefreshRepo) status(tokenID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[tokenID]; ok {
		return row.Status
	}
	return ""
}

type fakeTodosRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.Todo
	nextID int

	createErr error
}

func newFakeTodosRepo() *fakeTodosRepo {
	return &fakeTodosRepo{byID: map[string]*models.Todo{}}
}

func (f *fakeTodosRepo) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	todo.ID = fmt.Sprintf("t%d", f.nextID)
	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	f.byID[todo.ID] = todo
	return todo, nil
}

func (f *fakeTodosRepo) GetByID(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if todo, ok := f.byID[id]; ok && todo.OwnerID == ownerID {
		return todo, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTodosRepo) List(ctx context.Context, ownerID string, filter todosrepo.ListFilter) ([]*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Todo
	for _, todo := range f.byID {
		if todo.OwnerID != ownerID {
			continue
		}
		if filter.Completed != nil && todo.Completed != *filter.Completed {
			continue
		}
		result = append(result, todo)
	}
	return result, nil
}

func (f *fakeTodosRepo) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[todo.ID]
	if !ok || existing.OwnerID != todo.OwnerID {
		return nil, common.ErrorNotFound
	}
	todo.CreatedAt = existing.CreatedAt
	todo.UpdatedAt = time.Now()
	f.byID[todo.ID] = todo
	return todo, nil
}

func (f *fakeTodosRepo) Delete(ctx context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if todo, ok := f.byID[id]; ok && todo.OwnerID == ownerID {
		delete(f.byID, id)
		return nil
	}
	return common.ErrorNotFound
}

func (f *fakeTodosRepo) Toggle(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if todo, ok := f.byID[id]; ok && todo.OwnerID == ownerID {
		todo.Completed = !todo.Completed
		todo.UpdatedAt = time.Now()
		return todo, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTodosRepo) Stats(ctx context.Context, ownerID string) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, completed int64
	for _, todo := range f.byID {
		if todo.OwnerID != ownerID {
			continue
		}
		total++
		if todo.Completed {
			completed++
		}
	}
	return total, completed, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	t *fakeTodosRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		r: newFakeRefreshRepo(),
		t: newFakeTodosRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) Todos(db dbx.DBTX) todosrepo.Repository { return m.t }

func discardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
