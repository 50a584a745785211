package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"boardkit/domain"
)

type boardRequest struct {
	Name string `json:"name"`
}

type boardResponse struct {
	Board domain.Board `json:"board"`
}

type boardsResponse struct {
	Boards []domain.Board `json:"boards"`
}

func listBoards(store Storage, verifier Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger, "/api/boards")
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

		fetchStart := time.Now()
		boards, fetchErr := store.Boards(ctx, userID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = respondError(c, fetchErr, "failed to load boards")
			return err
		}
		metrics.SetItemsReturned(len(boards))

		err = c.JSON(http.StatusOK, boardsResponse{Boards: boards})
		return err
	}
}

func createBoard(store Storage, verifier Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := verifier.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return respondError(c, err, "unauthorized")
		}

		var req boardRequest
		if err := decodeBody(c.Request(), &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid body"})
		}
		name, err := domain.NormalizeBoardName(req.Name)
		if err != nil {
			return respondError(c, err, "failed to create board")
		}

		release, err := claimIdempotencyKey(c, deduper, userID)
		if err != nil {
			return respondError(c, err, "failed to create board")
		}

		board := domain.Board{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateBoard(ctx, board); err != nil {
			release(ctx)
			return respondError(c, err, "failed to create board")
		}

		publishChange(domain.Event{
			UserID:   userID,
			Entity:   domain.EntityBoard,
			Action:   domain.ActionCreated,
			EntityID: board.ID,
		})
		return c.JSON(http.StatusCreated, boardResponse{Board: board})
	}
}

func renameBoard(store Storage, verifier Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := verifier.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return respondError(c, err, "unauthorized")
		}

		var req boardRequest
		if err := decodeBody(c.Request(), &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid body"})
		}
		name, err := domain.NormalizeBoardName(req.Name)
		if err != nil {
			return respondError(c, err, "failed to update board")
		}

		board, err := store.RenameBoard(ctx, userID, c.Param("id"), name)
		if err != nil {
			return respondError(c, err, "failed to update board")
		}

		publishChange(domain.Event{
			UserID:   userID,
			Entity:   domain.EntityBoard,
			Action:   domain.ActionUpdated,
			EntityID: board.ID,
		})
		return c.JSON(http.StatusOK, board)
	}
}

func deleteBoard(store Storage, verifier Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := verifier.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return respondError(c, err, "unauthorized")
		}

		boardID := c.Param("id")
		if err := store.DeleteBoard(ctx, userID, boardID); err != nil {
			return respondError(c, err, "failed to delete board")
		}

		publishChange(domain.Event{
			UserID:   userID,
			Entity:   domain.EntityBoard,
			Action:   domain.ActionDeleted,
			EntityID: boardID,
		})
		return c.JSON(http.StatusOK, messageResponse{Message: "board deleted"})
	}
}
