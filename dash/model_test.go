package dash

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"boardkit/client"
	"boardkit/domain"
	"boardkit/session"
)

type fakeSvc struct {
	todosByBoard map[string][]domain.Todo
	updateFn     func(id string, patch domain.TodoPatch) (domain.Todo, error)
	todosErr     error
	token        string
}

func (f *fakeSvc) SetToken(token string) { f.token = token }

func (f *fakeSvc) Register(context.Context, string, string) error { return nil }

func (f *fakeSvc) Login(_ context.Context, email, _ string) (client.LoginResult, error) {
	f.token = "tok"
	result := client.LoginResult{Token: "tok"}
	result.User.Email = email
	return result, nil
}

func (f *fakeSvc) Boards(context.Context) ([]domain.Board, error) { return nil, nil }

func (f *fakeSvc) CreateBoard(_ context.Context, name string) (domain.Board, error) {
	return domain.Board{ID: "created", Name: name}, nil
}

func (f *fakeSvc) RenameBoard(_ context.Context, id, name string) (domain.Board, error) {
	return domain.Board{ID: id, Name: name}, nil
}

func (f *fakeSvc) DeleteBoard(context.Context, string) error { return nil }

func (f *fakeSvc) Todos(_ context.Context, boardID string) ([]domain.Todo, error) {
	if f.todosErr != nil {
		return nil, f.todosErr
	}
	return f.todosByBoard[boardID], nil
}

func (f *fakeSvc) CreateTodo(_ context.Context, boardID, title, description string) (domain.Todo, error) {
	return domain.Todo{ID: "new", BoardID: boardID, Title: title, Description: description}, nil
}

func (f *fakeSvc) UpdateTodo(_ context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	if f.updateFn != nil {
		return f.updateFn(id, patch)
	}
	return domain.Todo{ID: id}, nil
}

func (f *fakeSvc) DeleteTodo(context.Context, string) error { return nil }

func newTestModel(svc service) Model {
	m := New(svc, session.NewStoreAt("/dev/null"), session.Session{})
	m.screen = screenDashboard
	return m
}

// step applies a message and returns the concrete model plus the command.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next, cmd
}

// run applies a message, then keeps feeding resulting command messages back
// into the model until no command remains.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	var cmd tea.Cmd
	for {
		m, cmd = step(t, m, msg)
		if cmd == nil {
			return m
		}
		msg = cmd()
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestBoardsLoadedAutoSelectsFirst(t *testing.T) {
	svc := &fakeSvc{todosByBoard: map[string][]domain.Todo{
		"b1": {{ID: "t1", BoardID: "b1", Title: "dishes"}},
	}}
	m := newTestModel(svc)

	m = run(t, m, boardsLoadedMsg{boards: []domain.Board{{ID: "b1"}, {ID: "b2"}}})

	if m.selectedBoard != "b1" {
		t.Fatalf("selected %q, want b1", m.selectedBoard)
	}
	if len(m.todos) != 1 || m.todos[0].ID != "t1" {
		t.Fatalf("todos not fetched for auto-selected board: %+v", m.todos)
	}
}

func TestEmptyBoardListStaysUnselected(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m, cmd := step(t, m, boardsLoadedMsg{})
	if m.selectedBoard != "" || cmd != nil {
		t.Fatalf("expected no selection and no command, got %q", m.selectedBoard)
	}
}

func TestSelectingSameBoardSkipsRefetch(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.selectedBoard = "b1"
	m.todos = []domain.Todo{{ID: "t1"}}

	m, cmd := m.selectBoard("b1")
	if cmd != nil {
		t.Fatal("expected no fetch for already selected board")
	}
	if len(m.todos) != 1 {
		t.Fatal("todo list should be untouched")
	}
}

func TestStaleTodoFetchIsDropped(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.selectedBoard = "b2"
	m.todos = []domain.Todo{{ID: "t2", BoardID: "b2"}}

	m, _ = step(t, m, todosLoadedMsg{boardID: "b1", todos: []domain.Todo{{ID: "t1", BoardID: "b1"}}})

	if len(m.todos) != 1 || m.todos[0].ID != "t2" {
		t.Fatalf("stale response overwrote current list: %+v", m.todos)
	}
}

func TestCreatedBoardIsPrependedAndSelected(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.boards = []domain.Board{{ID: "b1"}}
	m.selectedBoard = "b1"

	m = run(t, m, boardCreatedMsg{board: domain.Board{ID: "b2", Name: "Fresh"}})

	if m.boards[0].ID != "b2" {
		t.Fatalf("new board not first: %+v", m.boards)
	}
	if m.selectedBoard != "b2" {
		t.Fatalf("selected %q, want b2", m.selectedBoard)
	}
}

func TestDeletingSelectedBoardMovesToNext(t *testing.T) {
	svc := &fakeSvc{todosByBoard: map[string][]domain.Todo{
		"b3": {{ID: "t3", BoardID: "b3"}},
	}}
	m := newTestModel(svc)
	m.boards = []domain.Board{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}
	m.selectedBoard = "b2"

	m = run(t, m, boardDeletedMsg{id: "b2"})

	if m.selectedBoard != "b3" {
		t.Fatalf("selected %q, want the next board b3", m.selectedBoard)
	}
	if len(m.todos) != 1 || m.todos[0].ID != "t3" {
		t.Fatalf("todos for new selection not loaded: %+v", m.todos)
	}
}

func TestDeletingLastBoardFallsBackToPrevious(t *testing.T) {
	m := newTestModel(&fakeSvc{todosByBoard: map[string][]domain.Todo{}})
	m.boards = []domain.Board{{ID: "b1"}, {ID: "b2"}}
	m.selectedBoard = "b2"

	m = run(t, m, boardDeletedMsg{id: "b2"})

	if m.selectedBoard != "b1" {
		t.Fatalf("selected %q, want b1", m.selectedBoard)
	}
}

func TestDeletingOnlyBoardClearsSelection(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.boards = []domain.Board{{ID: "b1"}}
	m.selectedBoard = "b1"
	m.todos = []domain.Todo{{ID: "t1"}}

	m = run(t, m, boardDeletedMsg{id: "b1"})

	if m.selectedBoard != "" {
		t.Fatalf("selected %q, want none", m.selectedBoard)
	}
	if len(m.todos) != 0 {
		t.Fatalf("todos should be cleared, got %+v", m.todos)
	}
}

func TestDeletingUnselectedBoardKeepsSelection(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.boards = []domain.Board{{ID: "b1"}, {ID: "b2"}}
	m.selectedBoard = "b1"
	m.todos = []domain.Todo{{ID: "t1"}}

	m, cmd := step(t, m, boardDeletedMsg{id: "b2"})
	if cmd != nil {
		t.Fatal("expected no refetch")
	}
	if m.selectedBoard != "b1" || len(m.todos) != 1 {
		t.Fatalf("selection disturbed: %q %+v", m.selectedBoard, m.todos)
	}
}

func TestTodoReconciliation(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.selectedBoard = "b1"
	m.todos = []domain.Todo{{ID: "t1", BoardID: "b1", Title: "old"}}

	m, _ = step(t, m, todoCreatedMsg{todo: domain.Todo{ID: "t2", BoardID: "b1", Title: "new"}})
	if len(m.todos) != 2 || m.todos[0].ID != "t2" {
		t.Fatalf("create should prepend: %+v", m.todos)
	}

	m, _ = step(t, m, todoSavedMsg{todo: domain.Todo{ID: "t1", BoardID: "b1", Title: "renamed"}})
	if m.todos[1].Title != "renamed" {
		t.Fatalf("update should replace by id: %+v", m.todos)
	}

	m, _ = step(t, m, todoDeletedMsg{id: "t2"})
	if len(m.todos) != 1 || m.todos[0].ID != "t1" {
		t.Fatalf("delete should filter out: %+v", m.todos)
	}
}

func TestCreatedTodoForOtherBoardIsIgnored(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.selectedBoard = "b2"

	m, _ = step(t, m, todoCreatedMsg{todo: domain.Todo{ID: "t1", BoardID: "b1"}})
	if len(m.todos) != 0 {
		t.Fatalf("todo for another board leaked in: %+v", m.todos)
	}
}

func TestToggleTwiceRestoresCompletion(t *testing.T) {
	stored := domain.Todo{ID: "t1", BoardID: "b1", Title: "dishes"}
	svc := &fakeSvc{updateFn: func(id string, patch domain.TodoPatch) (domain.Todo, error) {
		patch.Apply(&stored)
		return stored, nil
	}}
	m := newTestModel(svc)
	m.selectedBoard = "b1"
	m.todos = []domain.Todo{stored}
	m.focus = focusTodos

	m = run(t, m, keyPress(" "))
	if !m.todos[0].Completed {
		t.Fatal("first toggle should complete the todo")
	}
	m = run(t, m, keyPress(" "))
	if m.todos[0].Completed {
		t.Fatal("second toggle should restore the original value")
	}
}

func TestVisibleTodosIsPure(t *testing.T) {
	todos := []domain.Todo{
		{ID: "t1", Completed: false},
		{ID: "t2", Completed: true},
		{ID: "t3", Completed: false},
	}

	pending := visibleTodos(todos, FilterPending)
	if len(pending) != 2 {
		t.Fatalf("pending filter: got %d, want 2", len(pending))
	}
	completed := visibleTodos(todos, FilterCompleted)
	if len(completed) != 1 || completed[0].ID != "t2" {
		t.Fatalf("completed filter: %+v", completed)
	}

	all1 := visibleTodos(todos, FilterAll)
	all2 := visibleTodos(all1, FilterAll)
	if len(all2) != len(todos) {
		t.Fatal("filter all should be idempotent")
	}
	if len(todos) != 3 {
		t.Fatal("filtering must not mutate the source list")
	}
}

func TestEditModalLifecycle(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.selectedBoard = "b1"
	m.todos = []domain.Todo{{ID: "t1", BoardID: "b1", Title: "dishes", Description: "kitchen"}}
	m.focus = focusTodos

	m, _ = step(t, m, keyPress("e"))
	if !m.modal.open || m.modal.todoID != "t1" {
		t.Fatalf("modal not opened for t1: %+v", m.modal)
	}
	if m.modal.title.Value() != "dishes" || m.modal.desc.Value() != "kitchen" {
		t.Fatal("modal should be pre-filled from the todo")
	}

	m.modal.title.SetValue("   ")
	m, cmd := step(t, m, keyPress("enter"))
	if cmd != nil {
		t.Fatal("blank title must not issue a request")
	}
	if !m.modal.open || m.banner == "" {
		t.Fatal("modal should stay open with an error on blank title")
	}

	m, _ = step(t, m, keyPress("esc"))
	if m.modal.open {
		t.Fatal("esc should close the modal without saving")
	}
	if m.todos[0].Title != "dishes" {
		t.Fatal("cancel must leave the todo untouched")
	}
}

func TestErrorBannerIsDismissible(t *testing.T) {
	m := newTestModel(&fakeSvc{})
	m.selectedBoard = "b1"
	m.todos = []domain.Todo{{ID: "t1"}}

	m, _ = step(t, m, errMsg{errors.New("server unavailable")})
	if m.banner != "server unavailable" {
		t.Fatalf("banner %q", m.banner)
	}
	if len(m.todos) != 1 {
		t.Fatal("error must leave prior state intact")
	}

	m, _ = step(t, m, keyPress("esc"))
	if m.banner != "" {
		t.Fatal("esc should dismiss the banner")
	}
}

func TestLoginTransitionsToDashboard(t *testing.T) {
	svc := &fakeSvc{}
	store := session.NewStoreAt(t.TempDir() + "/session.json")
	m := New(svc, store, session.Session{})
	m.email.SetValue("ada@example.com")
	m.passwd.SetValue("hunter22")

	m = run(t, m, keyPress("enter"))

	if m.screen != screenDashboard {
		t.Fatal("expected dashboard after login")
	}
	saved, err := store.Load()
	if err != nil || saved.Token != "tok" || saved.Email != "ada@example.com" {
		t.Fatalf("session not persisted: %+v err %v", saved, err)
	}
}

func TestLogoutClearsSessionAndToken(t *testing.T) {
	svc := &fakeSvc{token: "tok"}
	store := session.NewStoreAt(t.TempDir() + "/session.json")
	if err := store.Save(session.Session{Token: "tok", Email: "ada@example.com"}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	m := New(svc, store, session.Session{Token: "tok", Email: "ada@example.com"})

	m, _ = step(t, m, keyPress("ctrl+l"))

	if m.screen != screenLogin {
		t.Fatal("logout should return to the login screen")
	}
	if svc.token != "" {
		t.Fatalf("client token survived logout: %q", svc.token)
	}
	saved, err := store.Load()
	if err != nil || saved != (session.Session{}) {
		t.Fatalf("session not cleared: %+v err %v", saved, err)
	}
}

func TestSavedSessionSkipsLogin(t *testing.T) {
	m := New(&fakeSvc{}, session.NewStoreAt("/dev/null"), session.Session{Token: "tok", Email: "ada@example.com"})
	if m.screen != screenDashboard {
		t.Fatal("saved session should land on the dashboard")
	}
	if m.Init() == nil {
		t.Fatal("dashboard init should fetch boards")
	}
}
