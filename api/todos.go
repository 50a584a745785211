package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"boardkit/domain"
)

type todoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func listTodos(store Storage, verifier Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger, "/api/boards/:boardId/todos")
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		userID, authErr := verifier.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = respondError(c, authErr, "unauthorized")
			return err
		}

		boardID := c.Param("boardId")
		fetchStart := time.Now()
		// The board lookup both authorizes the request and 404s unknown boards.
		if _, boardErr := store.Board(ctx, userID, boardID); boardErr != nil {
			metrics.ObserveFetch(time.Since(fetchStart))
			metrics.SetErrorStage("board_lookup")
			err = respondError(c, boardErr, "failed to load todos")
			return err
		}
		todos, fetchErr := store.TodosByBoard(ctx, userID, boardID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = respondError(c, fetchErr, "failed to load todos")
			return err
		}
		metrics.SetItemsReturned(len(todos))

		err = c.JSON(http.StatusOK, todos)
		return err
	}
}

func createTodo(store Storage, verifier Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := verifier.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return respondError(c, err, "unauthorized")
		}

		var req todoRequest
		if err := decodeBody(c.Request(), &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid body"})
		}
		title, err := domain.NormalizeTodoTitle(req.Title)
		if err != nil {
			return respondError(c, err, "failed to create todo")
		}

		boardID := c.Param("boardId")
		// The todo inherits the requester's identity only after the board
		// lookup proves the board is theirs.
		if _, err := store.Board(ctx, userID, boardID); err != nil {
			return respondError(c, err, "failed to create todo")
		}

		release, err := claimIdempotencyKey(c, deduper, userID)
		if err != nil {
			return respondError(c, err, "failed to create todo")
		}

		todo := domain.Todo{
			ID:          uuid.NewString(),
			UserID:      userID,
			BoardID:     boardID,
			Title:       title,
			Description: req.Description,
			Completed:   false,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.CreateTodo(ctx, todo); err != nil {
			release(ctx)
			return respondError(c, err, "failed to create todo")
		}

		publishChange(domain.Event{
			UserID:   userID,
			Entity:   domain.EntityTodo,
			Action:   domain.ActionCreated,
			EntityID: todo.ID,
			BoardID:  boardID,
		})
		return c.JSON(http.StatusCreated, todo)
	}
}

func updateTodo(store Storage, verifier Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := verifier.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return respondError(c, err, "unauthorized")
		}

		var patch domain.TodoPatch
		if err := decodeBody(c.Request(), &patch); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid body"})
		}
		if err := patch.Validate(); err != nil {
			return respondError(c, err, "failed to update todo")
		}

		todo, err := store.UpdateTodo(ctx, userID, c.Param("id"), patch)
		if err != nil {
			return respondError(c, err, "failed to update todo")
		}

		publishChange(domain.Event{
			UserID:   userID,
			Entity:   domain.EntityTodo,
			Action:   domain.ActionUpdated,
			EntityID: todo.ID,
			BoardID:  todo.BoardID,
		})
		return c.JSON(http.StatusOK, todo)
	}
}

func deleteTodo(store Storage, verifier Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := verifier.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return respondError(c, err, "unauthorized")
		}

		todo, err := store.DeleteTodo(ctx, userID, c.Param("id"))
		if err != nil {
			return respondError(c, err, "failed to delete todo")
		}

		publishChange(domain.Event{
			UserID:   userID,
			Entity:   domain.EntityTodo,
			Action:   domain.ActionDeleted,
			EntityID: todo.ID,
			BoardID:  todo.BoardID,
		})
		return c.JSON(http.StatusOK, messageResponse{Message: "todo deleted"})
	}
}
