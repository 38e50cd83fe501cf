package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/services"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", services.NewValidationError("a payment receipt is required"), http.StatusBadRequest, "a payment receipt is required"},
		{"not found", services.NewNotFoundError("user not found"), http.StatusNotFound, "user not found"},
		{"unauthenticated", services.NewAuthError("authentication required"), http.StatusUnauthorized, "authentication required"},
		{"forbidden", services.NewForbiddenError("withdrawal belongs to another member"), http.StatusForbidden, "withdrawal belongs to another member"},
		{"conflict", services.NewStateError("transaction has already been processed"), http.StatusConflict, "transaction has already been processed"},
		{"storage", &services.StorageError{Op: "load user", Err: errors.New("connection reset")}, http.StatusInternalServerError, "Something went wrong. Please try again."},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Something went wrong. Please try again."},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, errorResponse(c, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body models.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}
