package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, verifier Authenticator, issuer TokenIssuer, deduper Deduper, logger *log.Logger) {
	e.POST("/api/auth/register", registerUser(store, logger))
	e.POST("/api/auth/login", login(store, issuer))

	e.GET("/api/boards", listBoards(store, verifier, logger))
	e.POST("/api/boards", createBoard(store, verifier, deduper))
	e.PUT("/api/boards/:id", renameBoard(store, verifier))
	e.DELETE("/api/boards/:id", deleteBoard(store, verifier))

	e.GET("/api/boards/:boardId/todos", listTodos(store, verifier, logger))
	e.POST("/api/boards/:boardId/todos", createTodo(store, verifier, deduper))
	e.PUT("/api/todos/:id", updateTodo(store, verifier))
	e.DELETE("/api/todos/:id", deleteTodo(store, verifier))

	e.GET("/healthz", healthz())

	initEventPublisher(store, logger)
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}
