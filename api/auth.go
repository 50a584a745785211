package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"boardkit/auth"
	"boardkit/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userProfile `json:"user"`
}

type userProfile struct {
	Email string `json:"email"`
}

func registerUser(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c.Request(), &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid body"})
		}

		email, err := domain.NormalizeEmail(req.Email)
		if err != nil {
			return respondError(c, err, "failed to register")
		}
		if err := domain.ValidatePassword(req.Password); err != nil {
			return respondError(c, err, "failed to register")
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return respondError(c, err, "failed to register")
		}

		user := domain.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.CreateUser(c.Request().Context(), user); err != nil {
			return respondError(c, err, "failed to register")
		}

		logger.WithField("email", email).Info("user registered")
		return c.JSON(http.StatusCreated, messageResponse{Message: "registered"})
	}
}

func login(store Storage, issuer TokenIssuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c.Request(), &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid body"})
		}

		email, err := domain.NormalizeEmail(req.Email)
		if err != nil {
			return respondError(c, err, "failed to log in")
		}

		user, err := store.UserByEmail(c.Request().Context(), email)
		if err != nil {
			// An unknown email reads the same as a wrong password.
			var nferr domain.NotFoundError
			if errors.As(err, &nferr) {
				err = domain.AuthenticationError{Message: "invalid email or password"}
			}
			return respondError(c, err, "failed to log in")
		}
		if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
			return respondError(c, err, "failed to log in")
		}

		token, err := issuer.Mint(user.ID, user.Email)
		if err != nil {
			return respondError(c, err, "failed to log in")
		}

		return c.JSON(http.StatusOK, loginResponse{
			Token: token,
			User:  userProfile{Email: user.Email},
		})
	}
}
