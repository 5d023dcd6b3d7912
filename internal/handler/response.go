package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"snagdef/internal/model"
	"snagdef/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto fixed status codes with generic
// messages. Anything unclassified becomes a 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	detail := "Unexpected server error"

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		detail = apiErr.Message
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusBadRequest
		detail = "Username already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		detail = "Invalid credentials"
	case errors.Is(err, model.ErrInvalidToken):
		status = http.StatusUnauthorized
		detail = "Invalid token"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		detail = "User not found"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		detail = "Not authenticated"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		detail = "Admin privileges required"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		detail = "Invalid input"
	default:
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}
