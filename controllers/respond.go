package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/services"
)

// errorResponse translates a domain error into the shared response envelope.
// Storage failures are logged and reported generically.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "Something went wrong. Please try again."

	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		authErr       *services.AuthError
		stateErr      *services.StateError
		storageErr    *services.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Error()
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
		message = notFoundErr.Error()
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
		if authErr.Forbidden {
			status = http.StatusForbidden
		}
		message = authErr.Error()
	case errors.As(err, &stateErr):
		status = http.StatusConflict
		message = stateErr.Error()
	case errors.As(err, &storageErr):
		log.Printf("storage failure: %v", storageErr)
	default:
		log.Printf("unexpected error: %v", err)
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}
