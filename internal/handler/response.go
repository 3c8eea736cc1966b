package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
)

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// friendly maps a service error onto the message and status shown to the operator
func friendly(err error) *domain.UserFriendlyError {
	var ufe *domain.UserFriendlyError
	if errors.As(err, &ufe) {
		return ufe
	}

	var importErr *domain.ImportValidationError
	switch {
	case errors.As(err, &importErr):
		return domain.NewUserFriendlyError(err, importErr.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewUserFriendlyError(err, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrPermissionDenied):
		return domain.NewUserFriendlyError(err, "You don't have permission to do that.", http.StatusForbidden)
	case errors.Is(err, domain.ErrUnauthorized):
		return domain.NewUserFriendlyError(err, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.NewUserFriendlyError(err, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotInitialized):
		return domain.NewUserFriendlyError(err, "Service is not ready, try again shortly", http.StatusServiceUnavailable)
	}
	return domain.NewUserFriendlyError(err, "Something went wrong", http.StatusInternalServerError)
}

// respondError logs err and writes its user-facing form
func respondError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	ufe := friendly(err)
	fields := map[string]interface{}{"op": op, "status": ufe.HTTPStatusCode, "error": err.Error()}
	if ufe.HTTPStatusCode >= http.StatusInternalServerError {
		log.Error("request failed", fields)
	} else {
		log.Warn("request rejected", fields)
	}
	writeError(w, ufe.HTTPStatusCode, ufe.UserMessage)
}

// decodeJSON reads a JSON request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return domain.NewUserFriendlyError(err, "Invalid JSON", http.StatusBadRequest)
	}
	return nil
}
