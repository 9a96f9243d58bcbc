package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"contentboard/internal/apperror"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps the error kind to a status code. Unknown errors are
// logged and reported as 500 without their text.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperror.IsNotFound(err):
		WriteError(w, err.Error(), http.StatusNotFound)
	case apperror.IsConflict(err):
		WriteError(w, err.Error(), http.StatusConflict)
	case apperror.IsValidation(err):
		WriteError(w, err.Error(), http.StatusBadRequest)
	default:
		h.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// validationMessage names the first failing field of a validator error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid field " + fe.Field() + ": failed " + fe.Tag()
	}
	return "invalid request"
}

func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, "Invalid request format", http.StatusBadRequest)
		return false
	}

	if err := h.Validate.Struct(dst); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}
