package httputil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/redmonkez12/booking-project/internal/logging"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	// Form echoes back accepted, non-secret inputs so clients can refill the form
	Form map[string]string `json:"form,omitempty"`
}

// RedirectResponse tells non-browser clients where a browser would have been sent
type RedirectResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	Data     any    `json:"data,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Default().Error("failed to encode JSON response", "error", err.Error())
	}
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondFieldErrors sends field-scoped validation errors along with the
// inputs that should be preserved in the form.
func RespondFieldErrors(w http.ResponseWriter, fields map[string]string, form map[string]string) {
	RespondJSON(w, ErrorResponse{
		Error:  "please correct the errors below",
		Code:   CodeValidationFailed,
		Fields: fields,
		Form:   form,
	}, http.StatusUnprocessableEntity)
}

// RespondRedirect sends browsers to location with 303 See Other and gives
// API clients a JSON body naming the same location.
func RespondRedirect(w http.ResponseWriter, r *http.Request, location, message string, data any, statusCode int) {
	if WantsHTML(r) {
		http.Redirect(w, r, location, http.StatusSeeOther)
		return
	}
	RespondJSON(w, RedirectResponse{Message: message, Redirect: location, Data: data}, statusCode)
}

// WantsHTML reports whether the client is a browser submitting a form
func WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// IsFormRequest reports whether the body is form-encoded or multipart
func IsFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
