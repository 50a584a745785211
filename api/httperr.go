package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"boardkit/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

// respondError maps a taxonomy error to its HTTP status. Unknown errors are
// reported as 500 with the fallback message so store internals never leak.
func respondError(c echo.Context, err error, fallback string) error {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: verr.Message})
	}
	var aerr domain.AuthenticationError
	if errors.As(err, &aerr) {
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: aerr.Message})
	}
	var nferr domain.NotFoundError
	if errors.As(err, &nferr) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: nferr.Message})
	}
	var cerr domain.ConflictError
	if errors.As(err, &cerr) {
		return c.JSON(http.StatusConflict, messageResponse{Message: cerr.Message})
	}
	c.Logger().Error(err)
	var ierr domain.InternalError
	if errors.As(err, &ierr) {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: ierr.Message})
	}
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: fallback})
}
