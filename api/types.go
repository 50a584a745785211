package api

import (
	"context"

	"boardkit/domain"
)

// Storage abstracts persistence for handlers. Every board/todo operation is
// scoped by the owning user's ID; implementations must treat a wrong owner
// exactly like a missing record.
type Storage interface {
	CreateUser(ctx context.Context, user domain.User) error
	UserByEmail(ctx context.Context, email string) (domain.User, error)

	CreateBoard(ctx context.Context, board domain.Board) error
	Boards(ctx context.Context, userID string) ([]domain.Board, error)
	Board(ctx context.Context, userID, boardID string) (domain.Board, error)
	RenameBoard(ctx context.Context, userID, boardID, name string) (domain.Board, error)
	DeleteBoard(ctx context.Context, userID, boardID string) error

	CreateTodo(ctx context.Context, todo domain.Todo) error
	TodosByBoard(ctx context.Context, userID, boardID string) ([]domain.Todo, error)
	UpdateTodo(ctx context.Context, userID, todoID string, patch domain.TodoPatch) (domain.Todo, error)
	DeleteTodo(ctx context.Context, userID, todoID string) (domain.Todo, error)

	PublishEvent(ctx context.Context, event domain.Event) error
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// TokenIssuer mints bearer tokens after a successful login.
type TokenIssuer interface {
	Mint(userID, email string) (string, error)
}

// Deduper prevents reprocessing of replayed create requests.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when the guarded operation fails.
	Remove(ctx context.Context, userID, key string) error
}
