// Package client is a typed HTTP client for the boardkit API, used by the
// terminal dashboard and by integration tooling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"boardkit/domain"
)

// APIError carries the server's status and human-readable message for any
// non-success response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Client talks to a boardkit API server. Token may be empty until login.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a Client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: http.DefaultClient,
	}
}

// SetToken replaces the bearer token sent on subsequent requests. An empty
// token drops authentication, used on logout.
func (c *Client) SetToken(token string) {
	c.Token = token
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		Email string `json:"email"`
	} `json:"user"`
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", credentials{Email: email, Password: password}, nil)
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{Email: email, Password: password}, &result)
	if err != nil {
		return LoginResult{}, err
	}
	c.Token = result.Token
	return result, nil
}

type boardRequest struct {
	Name string `json:"name"`
}

type boardEnvelope struct {
	Board domain.Board `json:"board"`
}

type boardsEnvelope struct {
	Boards []domain.Board `json:"boards"`
}

// Boards lists the user's boards, newest first.
func (c *Client) Boards(ctx context.Context) ([]domain.Board, error) {
	var env boardsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/boards", nil, &env); err != nil {
		return nil, err
	}
	return env.Boards, nil
}

// CreateBoard creates a board and returns the server's representation.
func (c *Client) CreateBoard(ctx context.Context, name string) (domain.Board, error) {
	var env boardEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/boards", boardRequest{Name: name}, &env); err != nil {
		return domain.Board{}, err
	}
	return env.Board, nil
}

// RenameBoard renames a board and returns the updated board.
func (c *Client) RenameBoard(ctx context.Context, boardID, name string) (domain.Board, error) {
	var board domain.Board
	if err := c.do(ctx, http.MethodPut, "/api/boards/"+boardID, boardRequest{Name: name}, &board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// DeleteBoard removes a board. Its todos are not removed server-side.
func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	return c.do(ctx, http.MethodDelete, "/api/boards/"+boardID, nil, nil)
}

type todoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Todos lists a board's todos, newest first.
func (c *Client) Todos(ctx context.Context, boardID string) ([]domain.Todo, error) {
	var todos []domain.Todo
	if err := c.do(ctx, http.MethodGet, "/api/boards/"+boardID+"/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo creates a todo under the given board.
func (c *Client) CreateTodo(ctx context.Context, boardID, title, description string) (domain.Todo, error) {
	var todo domain.Todo
	err := c.do(ctx, http.MethodPost, "/api/boards/"+boardID+"/todos",
		todoRequest{Title: title, Description: description}, &todo)
	if err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

// UpdateTodo applies a partial update and returns the updated todo.
func (c *Client) UpdateTodo(ctx context.Context, todoID string, patch domain.TodoPatch) (domain.Todo, error) {
	var todo domain.Todo
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+todoID, patch, &todo); err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, todoID string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+todoID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}
