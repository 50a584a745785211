// Package dash is the terminal dashboard for boardkit. It follows the
// bubbletea Elm loop: messages from completed API calls are merged into the
// model, and the view is re-rendered from the model alone.
package dash

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"boardkit/client"
	"boardkit/domain"
	"boardkit/session"
)

// service is the slice of the API client the dashboard needs. Tests swap in
// a fake.
type service interface {
	SetToken(token string)
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (client.LoginResult, error)
	Boards(ctx context.Context) ([]domain.Board, error)
	CreateBoard(ctx context.Context, name string) (domain.Board, error)
	RenameBoard(ctx context.Context, boardID, name string) (domain.Board, error)
	DeleteBoard(ctx context.Context, boardID string) error
	Todos(ctx context.Context, boardID string) ([]domain.Todo, error)
	CreateTodo(ctx context.Context, boardID, title, description string) (domain.Todo, error)
	UpdateTodo(ctx context.Context, todoID string, patch domain.TodoPatch) (domain.Todo, error)
	DeleteTodo(ctx context.Context, todoID string) error
}

type screen int

const (
	screenLogin screen = iota
	screenDashboard
)

// FilterMode selects which todos the list view shows.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterPending
	FilterCompleted
)

func (m FilterMode) String() string {
	switch m {
	case FilterPending:
		return "pending"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

type paneFocus int

const (
	focusBoards paneFocus = iota
	focusTodos
)

// Messages delivered by completed commands.
type (
	registeredMsg   struct{}
	loggedInMsg     struct{ result client.LoginResult }
	boardsLoadedMsg struct{ boards []domain.Board }
	todosLoadedMsg  struct {
		boardID string
		todos   []domain.Todo
	}
	boardCreatedMsg struct{ board domain.Board }
	boardRenamedMsg struct{ board domain.Board }
	boardDeletedMsg struct{ id string }
	todoCreatedMsg  struct{ todo domain.Todo }
	todoSavedMsg    struct{ todo domain.Todo }
	todoDeletedMsg  struct{ id string }
	errMsg          struct{ err error }
)

// editModal is the open/closed edit dialog. An empty todoID means the modal
// is creating a new todo.
type editModal struct {
	open   bool
	todoID string
	title  textinput.Model
	desc   textinput.Model
	field  int
}

// boardPrompt collects a name for a new or renamed board. An empty renameID
// means a new board.
type boardPrompt struct {
	open     bool
	renameID string
	input    textinput.Model
}

// Model holds all dashboard state.
type Model struct {
	svc      service
	sessions *session.Store

	screen screen
	email  textinput.Model
	passwd textinput.Model
	field  int
	user   string

	boards        []domain.Board
	selectedBoard string
	boardCursor   int

	todos      []domain.Todo
	todoCursor int
	filter     FilterMode

	focus  paneFocus
	modal  editModal
	prompt boardPrompt

	banner  string
	loading bool

	width  int
	height int
}

// New builds the dashboard model. A non-empty saved session skips the login
// screen; main is expected to have primed the client with the saved token.
func New(svc service, sessions *session.Store, saved session.Session) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.Focus()
	passwd := textinput.New()
	passwd.Placeholder = "password"
	passwd.EchoMode = textinput.EchoPassword

	m := Model{
		svc:      svc,
		sessions: sessions,
		screen:   screenLogin,
		email:    email,
		passwd:   passwd,
	}
	if saved.Token != "" {
		m.screen = screenDashboard
		m.user = saved.Email
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.screen == screenDashboard {
		return m.fetchBoards()
	}
	return textinput.Blink
}

// visibleTodos derives the filtered view. It never mutates the input list.
func visibleTodos(todos []domain.Todo, mode FilterMode) []domain.Todo {
	if mode == FilterAll {
		return todos
	}
	wantCompleted := mode == FilterCompleted
	out := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		if t.Completed == wantCompleted {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case errMsg:
		m.loading = false
		m.banner = msg.err.Error()
		return m, nil

	case registeredMsg:
		m.loading = false
		m.banner = "registered, you can log in now"
		return m, nil

	case loggedInMsg:
		m.loading = false
		m.banner = ""
		m.screen = screenDashboard
		m.user = msg.result.User.Email
		if m.sessions != nil {
			if err := m.sessions.Save(session.Session{Token: msg.result.Token, Email: msg.result.User.Email}); err != nil {
				m.banner = err.Error()
			}
		}
		return m, m.fetchBoards()

	case boardsLoadedMsg:
		m.loading = false
		m.boards = msg.boards
		if m.selectedBoard == "" && len(m.boards) > 0 {
			return m.selectBoard(m.boards[0].ID)
		}
		return m, nil

	case todosLoadedMsg:
		// A fetch for a board the user has since navigated away from must
		// not clobber the current list.
		if msg.boardID != m.selectedBoard {
			return m, nil
		}
		m.loading = false
		m.todos = msg.todos
		m.todoCursor = 0
		return m, nil

	case boardCreatedMsg:
		m.loading = false
		m.prompt = boardPrompt{}
		m.boards = append([]domain.Board{msg.board}, m.boards...)
		m.boardCursor = 0
		return m.selectBoard(msg.board.ID)

	case boardRenamedMsg:
		m.loading = false
		m.prompt = boardPrompt{}
		for i := range m.boards {
			if m.boards[i].ID == msg.board.ID {
				m.boards[i] = msg.board
			}
		}
		return m, nil

	case boardDeletedMsg:
		m.loading = false
		return m.removeBoard(msg.id)

	case todoCreatedMsg:
		m.loading = false
		m.modal = editModal{}
		if msg.todo.BoardID == m.selectedBoard {
			m.todos = append([]domain.Todo{msg.todo}, m.todos...)
		}
		return m, nil

	case todoSavedMsg:
		m.loading = false
		m.modal = editModal{}
		for i := range m.todos {
			if m.todos[i].ID == msg.todo.ID {
				m.todos[i] = msg.todo
			}
		}
		return m, nil

	case todoDeletedMsg:
		m.loading = false
		kept := m.todos[:0:0]
		for _, t := range m.todos {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.todos = kept
		if m.todoCursor >= len(m.todos) && m.todoCursor > 0 {
			m.todoCursor--
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

// selectBoard is the selection transition. Selecting the already selected
// board is a no-op so the todo list is not refetched redundantly.
func (m Model) selectBoard(id string) (Model, tea.Cmd) {
	if id == m.selectedBoard {
		return m, nil
	}
	m.selectedBoard = id
	m.todos = nil
	m.todoCursor = 0
	if id == "" {
		return m, nil
	}
	m.loading = true
	return m, m.fetchTodos(id)
}

// removeBoard drops a board from the list and, when it was selected, moves
// the selection to the next board in pre-deletion order (or the previous one
// when the last board was deleted).
func (m Model) removeBoard(id string) (Model, tea.Cmd) {
	idx := -1
	for i, b := range m.boards {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return m, nil
	}
	m.boards = append(m.boards[:idx:idx], m.boards[idx+1:]...)
	if m.boardCursor >= len(m.boards) && m.boardCursor > 0 {
		m.boardCursor--
	}
	if m.selectedBoard != id {
		return m, nil
	}
	if len(m.boards) == 0 {
		return m.selectBoard("")
	}
	next := idx
	if next >= len(m.boards) {
		next = len(m.boards) - 1
	}
	return m.selectBoard(m.boards[next].ID)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.screen == screenLogin {
		return m.handleLoginKey(msg)
	}
	if m.modal.open {
		return m.handleModalKey(msg)
	}
	if m.prompt.open {
		return m.handlePromptKey(msg)
	}

	switch key {
	case "esc":
		m.banner = ""
		return m, nil
	case "ctrl+l":
		return m.logout()
	case "tab":
		if m.focus == focusBoards {
			m.focus = focusTodos
		} else {
			m.focus = focusBoards
		}
		return m, nil
	case "f":
		m.filter = (m.filter + 1) % 3
		m.todoCursor = 0
		return m, nil
	case "up", "k":
		if m.focus == focusBoards && m.boardCursor > 0 {
			m.boardCursor--
		} else if m.focus == focusTodos && m.todoCursor > 0 {
			m.todoCursor--
		}
		return m, nil
	case "down", "j":
		if m.focus == focusBoards && m.boardCursor < len(m.boards)-1 {
			m.boardCursor++
		} else if m.focus == focusTodos && m.todoCursor < len(visibleTodos(m.todos, m.filter))-1 {
			m.todoCursor++
		}
		return m, nil
	case "enter":
		if m.focus == focusBoards && m.boardCursor < len(m.boards) {
			return m.selectBoard(m.boards[m.boardCursor].ID)
		}
		if m.focus == focusTodos {
			return m.toggleTodoUnderCursor()
		}
		return m, nil
	case " ":
		if m.focus == focusTodos {
			return m.toggleTodoUnderCursor()
		}
		return m, nil
	case "n":
		if m.focus == focusBoards {
			return m.openBoardPrompt(""), textinput.Blink
		}
		if m.selectedBoard != "" {
			return m.openModal(domain.Todo{}), textinput.Blink
		}
		return m, nil
	case "r":
		if m.focus == focusBoards && m.boardCursor < len(m.boards) {
			return m.openBoardPrompt(m.boards[m.boardCursor].ID), textinput.Blink
		}
		return m, nil
	case "e":
		if m.focus == focusTodos {
			if todo, ok := m.todoUnderCursor(); ok {
				return m.openModal(todo), textinput.Blink
			}
		}
		return m, nil
	case "d":
		if m.focus == focusBoards && m.boardCursor < len(m.boards) {
			m.loading = true
			return m, m.deleteBoard(m.boards[m.boardCursor].ID)
		}
		if m.focus == focusTodos {
			if todo, ok := m.todoUnderCursor(); ok {
				m.loading = true
				return m, m.deleteTodo(todo.ID)
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.field = (m.field + 1) % 2
		if m.field == 0 {
			m.email.Focus()
			m.passwd.Blur()
		} else {
			m.email.Blur()
			m.passwd.Focus()
		}
		return m, textinput.Blink
	case "esc":
		m.banner = ""
		return m, nil
	case "enter":
		m.loading = true
		return m, m.login(m.email.Value(), m.passwd.Value())
	case "ctrl+r":
		m.loading = true
		return m, m.register(m.email.Value(), m.passwd.Value())
	}
	return m.updateInputs(msg)
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = editModal{}
		return m, nil
	case "tab", "shift+tab":
		m.modal.field = (m.modal.field + 1) % 2
		if m.modal.field == 0 {
			m.modal.title.Focus()
			m.modal.desc.Blur()
		} else {
			m.modal.title.Blur()
			m.modal.desc.Focus()
		}
		return m, textinput.Blink
	case "enter":
		return m.saveModal()
	}
	return m.updateInputs(msg)
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = boardPrompt{}
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.prompt.input.Value())
		if name == "" {
			m.banner = "board name is required"
			return m, nil
		}
		m.loading = true
		if m.prompt.renameID != "" {
			return m, m.renameBoard(m.prompt.renameID, name)
		}
		return m, m.createBoard(name)
	}
	return m.updateInputs(msg)
}

// saveModal validates locally before issuing the request. On failure the
// modal stays open with its contents intact.
func (m Model) saveModal() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.modal.title.Value())
	if title == "" {
		m.banner = "title is required"
		return m, nil
	}
	description := m.modal.desc.Value()
	m.loading = true
	if m.modal.todoID == "" {
		return m, m.createTodo(m.selectedBoard, title, description)
	}
	return m, m.updateTodo(m.modal.todoID, domain.TodoPatch{Title: &title, Description: &description})
}

func (m Model) toggleTodoUnderCursor() (tea.Model, tea.Cmd) {
	todo, ok := m.todoUnderCursor()
	if !ok {
		return m, nil
	}
	completed := !todo.Completed
	m.loading = true
	return m, m.updateTodo(todo.ID, domain.TodoPatch{Completed: &completed})
}

func (m Model) todoUnderCursor() (domain.Todo, bool) {
	visible := visibleTodos(m.todos, m.filter)
	if m.todoCursor >= len(visible) {
		return domain.Todo{}, false
	}
	return visible[m.todoCursor], true
}

func (m Model) openModal(todo domain.Todo) Model {
	title := textinput.New()
	title.Placeholder = "title"
	title.SetValue(todo.Title)
	title.Focus()
	desc := textinput.New()
	desc.Placeholder = "description"
	desc.SetValue(todo.Description)
	m.modal = editModal{open: true, todoID: todo.ID, title: title, desc: desc}
	return m
}

func (m Model) openBoardPrompt(renameID string) Model {
	input := textinput.New()
	input.Placeholder = "board name"
	input.Focus()
	if renameID != "" {
		for _, b := range m.boards {
			if b.ID == renameID {
				input.SetValue(b.Name)
			}
		}
	}
	m.prompt = boardPrompt{open: true, renameID: renameID, input: input}
	return m
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.sessions != nil {
		if err := m.sessions.Clear(); err != nil {
			m.banner = err.Error()
			return m, nil
		}
	}
	m.svc.SetToken("")
	fresh := New(m.svc, m.sessions, session.Session{})
	fresh.width = m.width
	fresh.height = m.height
	return fresh, textinput.Blink
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.modal.open:
		if m.modal.field == 0 {
			m.modal.title, cmd = m.modal.title.Update(msg)
		} else {
			m.modal.desc, cmd = m.modal.desc.Update(msg)
		}
	case m.prompt.open:
		m.prompt.input, cmd = m.prompt.input.Update(msg)
	case m.screen == screenLogin:
		if m.field == 0 {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.passwd, cmd = m.passwd.Update(msg)
		}
	}
	return m, cmd
}

// Commands. Each wraps one API call and reports back as a message.

func (m Model) register(email, password string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.Register(context.Background(), email, password); err != nil {
			return errMsg{err}
		}
		return registeredMsg{}
	}
}

func (m Model) login(email, password string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		result, err := svc.Login(context.Background(), email, password)
		if err != nil {
			return errMsg{err}
		}
		return loggedInMsg{result}
	}
}

func (m Model) fetchBoards() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		boards, err := svc.Boards(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return boardsLoadedMsg{boards}
	}
}

func (m Model) fetchTodos(boardID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		todos, err := svc.Todos(context.Background(), boardID)
		if err != nil {
			return errMsg{err}
		}
		return todosLoadedMsg{boardID: boardID, todos: todos}
	}
}

func (m Model) createBoard(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		board, err := svc.CreateBoard(context.Background(), name)
		if err != nil {
			return errMsg{err}
		}
		return boardCreatedMsg{board}
	}
}

func (m Model) renameBoard(id, name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		board, err := svc.RenameBoard(context.Background(), id, name)
		if err != nil {
			return errMsg{err}
		}
		return boardRenamedMsg{board}
	}
}

func (m Model) deleteBoard(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteBoard(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return boardDeletedMsg{id}
	}
}

func (m Model) createTodo(boardID, title, description string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		todo, err := svc.CreateTodo(context.Background(), boardID, title, description)
		if err != nil {
			return errMsg{err}
		}
		return todoCreatedMsg{todo}
	}
}

func (m Model) updateTodo(id string, patch domain.TodoPatch) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		todo, err := svc.UpdateTodo(context.Background(), id, patch)
		if err != nil {
			return errMsg{err}
		}
		return todoSavedMsg{todo}
	}
}

func (m Model) deleteTodo(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteTodo(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return todoDeletedMsg{id}
	}
}
