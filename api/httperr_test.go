package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"boardkit/domain"
)

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", domain.ValidationError{Message: "name is required"}, http.StatusBadRequest, "name is required"},
		{"authentication", domain.AuthenticationError{Message: "invalid email or password"}, http.StatusUnauthorized, "invalid email or password"},
		{"not found", domain.NotFoundError{Message: "board not found"}, http.StatusNotFound, "board not found"},
		{"conflict", domain.ConflictError{Message: "email already registered"}, http.StatusConflict, "email already registered"},
		{"internal", domain.InternalError{Message: "corrupt board record"}, http.StatusInternalServerError, "corrupt board record"},
		{"unknown", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "could not list boards"},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := respondError(c, tc.err, "could not list boards"); err != nil {
				t.Fatalf("respondError: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d", rec.Code, tc.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tc.wantMessage) {
				t.Fatalf("body %q, want message %q", rec.Body.String(), tc.wantMessage)
			}
			if tc.name == "unknown" && strings.Contains(rec.Body.String(), "dial tcp") {
				t.Fatal("store-internal detail leaked to the response")
			}
		})
	}
}
