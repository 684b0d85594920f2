package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/flowdeck/collab/internal/domain"
	"github.com/flowdeck/collab/internal/server/middleware"
)

// userCtx builds a request context carrying the identity the auth
// middleware would inject.
func userCtx(userID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserName, "Test User")
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tasks domain.TaskRepository
}

func (m *mockDataStore) Tasks() domain.TaskRepository { return m.tasks }

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc       func(ctx context.Context, t *domain.Task) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listByBoardFunc  func(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)
	listByStatusFunc func(ctx context.Context, boardID uuid.UUID, status domain.TaskStatus) ([]*domain.Task, error)
	updateFunc       func(ctx context.Context, t *domain.Task) error
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockTaskRepo) ListByStatus(ctx context.Context, boardID uuid.UUID, status domain.TaskStatus) ([]*domain.Task, error) {
	return m.listByStatusFunc(ctx, boardID, status)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock PresenceSource
// ---------------------------------------------------------------------------

type mockPresence struct {
	usersFunc func(boardID uuid.UUID) []uuid.UUID
}

func (m *mockPresence) Users(boardID uuid.UUID) []uuid.UUID {
	return m.usersFunc(boardID)
}
