package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"boardkit/domain"
)

// usersPartition is the single partition holding user records, keyed by email
// so the table enforces email uniqueness on insert.
const usersPartition = "user"

// Store provides access to the backing Azure tables and the change-event
// queue. Boards and todos are partitioned by owning-user ID, so every point
// operation is scoped to the requester and cross-user access cannot be
// expressed.
type Store struct {
	userTable  *aztables.Client
	boardTable *aztables.Client
	todoTable  *aztables.Client
	eventQueue *azqueue.QueueClient
}

// New creates a Store from the given connection string and resource names.
func New(connStr, usersTable, boardsTable, todosTable, eventsQueue string) (*Store, error) {
	tableOpts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &tableOpts)
	if err != nil {
		return nil, err
	}
	queueOpts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	eq, err := azqueue.NewQueueClientFromConnectionString(connStr, eventsQueue, &queueOpts)
	if err != nil {
		return nil, err
	}
	return &Store{
		userTable:  svc.NewClient(usersTable),
		boardTable: svc.NewClient(boardsTable),
		todoTable:  svc.NewClient(todosTable),
		eventQueue: eq,
	}, nil
}

type userEntity struct {
	aztables.Entity
	UserID       string `json:"UserID"`
	PasswordHash string `json:"PasswordHash"`
	CreatedAt    string `json:"CreatedAt"`
}

type boardEntity struct {
	aztables.Entity
	Name      string `json:"Name"`
	CreatedAt string `json:"CreatedAt"`
}

type todoEntity struct {
	aztables.Entity
	BoardID     string `json:"BoardID"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Completed   bool   `json:"Completed"`
	CreatedAt   string `json:"CreatedAt"`
}

// CreateUser inserts a user record. A duplicate email maps to ConflictError.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	ent := userEntity{
		Entity:       aztables.Entity{PartitionKey: usersPartition, RowKey: user.Email},
		UserID:       user.ID,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	if _, err := s.userTable.AddEntity(ctx, payload, nil); err != nil {
		if statusOf(err) == 409 {
			return domain.ConflictError{Message: "email already registered"}
		}
		return err
	}
	return nil
}

// UserByEmail fetches a user record; an unknown email maps to NotFoundError.
func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	ent, err := s.userTable.GetEntity(ctx, usersPartition, email, nil)
	if err != nil {
		if statusOf(err) == 404 {
			return domain.User{}, domain.NotFoundError{Message: "user not found"}
		}
		return domain.User{}, err
	}
	return decodeUserEntity(ent.Value)
}

// CreateBoard persists a new board under its owner's partition.
func (s *Store) CreateBoard(ctx context.Context, board domain.Board) error {
	ent := boardEntity{
		Entity:    aztables.Entity{PartitionKey: board.UserID, RowKey: board.ID},
		Name:      board.Name,
		CreatedAt: board.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.boardTable.AddEntity(ctx, payload, nil)
	return err
}

// Boards lists all boards owned by the user, newest-created first.
func (s *Store) Boards(ctx context.Context, userID string) ([]domain.Board, error) {
	filter := "PartitionKey eq '" + userID + "'"
	pager := s.boardTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	boards := []domain.Board{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			board, err := decodeBoardEntity(raw)
			if err != nil {
				return nil, err
			}
			boards = append(boards, board)
		}
	}
	sortBoardsNewestFirst(boards)
	return boards, nil
}

// Board fetches a single board scoped by owner; anything else is a 404.
func (s *Store) Board(ctx context.Context, userID, boardID string) (domain.Board, error) {
	ent, err := s.boardTable.GetEntity(ctx, userID, boardID, nil)
	if err != nil {
		if statusOf(err) == 404 {
			return domain.Board{}, domain.NotFoundError{Message: "board not found"}
		}
		return domain.Board{}, err
	}
	return decodeBoardEntity(ent.Value)
}

// RenameBoard updates a board's name and returns the updated board.
func (s *Store) RenameBoard(ctx context.Context, userID, boardID, name string) (domain.Board, error) {
	board, err := s.Board(ctx, userID, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	board.Name = name
	ent := boardEntity{
		Entity:    aztables.Entity{PartitionKey: userID, RowKey: boardID},
		Name:      board.Name,
		CreatedAt: board.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return domain.Board{}, err
	}
	et := azcore.ETagAny
	_, err = s.boardTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeReplace})
	if err != nil {
		if statusOf(err) == 404 {
			return domain.Board{}, domain.NotFoundError{Message: "board not found"}
		}
		return domain.Board{}, err
	}
	return board, nil
}

// DeleteBoard removes a board. Its todos are left in place; orphan cleanup is
// out of scope for board deletion.
func (s *Store) DeleteBoard(ctx context.Context, userID, boardID string) error {
	if _, err := s.boardTable.DeleteEntity(ctx, userID, boardID, nil); err != nil {
		if statusOf(err) == 404 {
			return domain.NotFoundError{Message: "board not found"}
		}
		return err
	}
	return nil
}

// CreateTodo persists a new todo under its owner's partition.
func (s *Store) CreateTodo(ctx context.Context, todo domain.Todo) error {
	ent := todoEntity{
		Entity:      aztables.Entity{PartitionKey: todo.UserID, RowKey: todo.ID},
		BoardID:     todo.BoardID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.todoTable.AddEntity(ctx, payload, nil)
	return err
}

// TodosByBoard lists the user's todos for one board, newest-created first.
func (s *Store) TodosByBoard(ctx context.Context, userID, boardID string) ([]domain.Todo, error) {
	filter := "PartitionKey eq '" + userID + "' and BoardID eq '" + boardID + "'"
	pager := s.todoTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	todos := []domain.Todo{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			todo, err := decodeTodoEntity(raw)
			if err != nil {
				return nil, err
			}
			todos = append(todos, todo)
		}
	}
	sortTodosNewestFirst(todos)
	return todos, nil
}

// UpdateTodo applies a validated patch to a todo and returns the result.
func (s *Store) UpdateTodo(ctx context.Context, userID, todoID string, patch domain.TodoPatch) (domain.Todo, error) {
	ent, err := s.todoTable.GetEntity(ctx, userID, todoID, nil)
	if err != nil {
		if statusOf(err) == 404 {
			return domain.Todo{}, domain.NotFoundError{Message: "todo not found"}
		}
		return domain.Todo{}, err
	}
	todo, err := decodeTodoEntity(ent.Value)
	if err != nil {
		return domain.Todo{}, err
	}
	patch.Apply(&todo)

	updated := todoEntity{
		Entity:      aztables.Entity{PartitionKey: userID, RowKey: todoID},
		BoardID:     todo.BoardID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(updated)
	if err != nil {
		return domain.Todo{}, err
	}
	et := azcore.ETagAny
	_, err = s.todoTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeReplace})
	if err != nil {
		if statusOf(err) == 404 {
			return domain.Todo{}, domain.NotFoundError{Message: "todo not found"}
		}
		return domain.Todo{}, err
	}
	return todo, nil
}

// DeleteTodo removes a todo and returns the removed record.
func (s *Store) DeleteTodo(ctx context.Context, userID, todoID string) (domain.Todo, error) {
	ent, err := s.todoTable.GetEntity(ctx, userID, todoID, nil)
	if err != nil {
		if statusOf(err) == 404 {
			return domain.Todo{}, domain.NotFoundError{Message: "todo not found"}
		}
		return domain.Todo{}, err
	}
	todo, err := decodeTodoEntity(ent.Value)
	if err != nil {
		return domain.Todo{}, err
	}
	if _, err := s.todoTable.DeleteEntity(ctx, userID, todoID, nil); err != nil {
		if statusOf(err) == 404 {
			return domain.Todo{}, domain.NotFoundError{Message: "todo not found"}
		}
		return domain.Todo{}, err
	}
	return todo, nil
}

// PublishEvent sends a change event to the events queue.
func (s *Store) PublishEvent(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = s.eventQueue.EnqueueMessage(ctx, string(data), nil)
	return err
}

func statusOf(err error) int {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

func decodeUserEntity(data []byte) (domain.User, error) {
	var ent userEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.User{}, domain.InternalError{Message: "corrupt user record"}
	}
	createdAt, err := parseCreatedAt(ent.CreatedAt)
	if err != nil {
		return domain.User{}, domain.InternalError{Message: "corrupt user record"}
	}
	return domain.User{
		ID:           ent.UserID,
		Email:        ent.RowKey,
		PasswordHash: ent.PasswordHash,
		CreatedAt:    createdAt,
	}, nil
}

func decodeBoardEntity(data []byte) (domain.Board, error) {
	var ent boardEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Board{}, domain.InternalError{Message: "corrupt board record"}
	}
	createdAt, err := parseCreatedAt(ent.CreatedAt)
	if err != nil {
		return domain.Board{}, domain.InternalError{Message: "corrupt board record"}
	}
	return domain.Board{
		ID:        ent.RowKey,
		UserID:    ent.PartitionKey,
		Name:      ent.Name,
		CreatedAt: createdAt,
	}, nil
}

func decodeTodoEntity(data []byte) (domain.Todo, error) {
	var ent todoEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Todo{}, domain.InternalError{Message: "corrupt todo record"}
	}
	createdAt, err := parseCreatedAt(ent.CreatedAt)
	if err != nil {
		return domain.Todo{}, domain.InternalError{Message: "corrupt todo record"}
	}
	return domain.Todo{
		ID:          ent.RowKey,
		UserID:      ent.PartitionKey,
		BoardID:     ent.BoardID,
		Title:       ent.Title,
		Description: ent.Description,
		Completed:   ent.Completed,
		CreatedAt:   createdAt,
	}, nil
}

func parseCreatedAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}

// Table storage orders rows by key, not by time, so list results are sorted
// here. Ties fall back to row key for a stable order.
func sortBoardsNewestFirst(boards []domain.Board) {
	sort.SliceStable(boards, func(i, j int) bool {
		if !boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].CreatedAt.After(boards[j].CreatedAt)
		}
		return boards[i].ID > boards[j].ID
	})
}

func sortTodosNewestFirst(todos []domain.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].ID > todos[j].ID
	})
}
