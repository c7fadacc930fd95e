package api

import (
	"encoding/json"
	"net/http"

	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/middleware"
	"github.com/nijaru/videovoyager/models"
	"github.com/nijaru/videovoyager/validation"
)

const maxBodyBytes = 1 << 20

var jsonRequest = validation.RequestValidationOpts{
	MaxContentLength: maxBodyBytes,
	AllowedMethods:   []string{http.MethodPost},
	RequireJSON:      true,
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

// respondError writes err as {"error", "status"}. Errors that are not
// AppErrors are reported as a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "Internal server error"

	if appErr, ok := errors.As(err); ok {
		code = appErr.Code
		msg = appErr.Message
	}

	entry := middleware.GetLogger(r.Context()).WithError(err).WithField("status", code)
	if code >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Debug("Request rejected")
	}

	respondJSON(w, r, code, models.ErrorResponse{Error: msg, Status: code})
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidInput("readJSON", err, "Invalid JSON format")
	}
	return nil
}
