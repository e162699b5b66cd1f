// Package httpx holds the small HTTP helpers shared by every handler: JSON
// encoding, the error-returning handler adapter and the central error
// responder.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/logging"
)

// productionStack replaces error detail in production responses.
const productionStack = ":("

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// HandlerFunc is an http.HandlerFunc that reports failure by returning it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Responder turns handler errors into JSON responses.
type Responder struct {
	production bool
	logger     logging.Logger
}

func NewResponder(production bool, logger logging.Logger) *Responder {
	return &Responder{production: production, logger: logger}
}

// Handle adapts fn to net/http, sending any returned error to Error.
func (rp *Responder) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			rp.Error(w, r, err)
		}
	}
}

// Error writes err as {message, stack}. Anything that is not an
// *apperr.Error is reported as a 500 with a generic message.
func (rp *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(err)

	msg := "Server error"
	var appErr *apperr.Error
	switch {
	case status == http.StatusInternalServerError:
	case errors.As(err, &appErr):
		msg = appErr.Message
	case errors.Is(err, apperr.ErrTokenExpired):
		msg = "Token expired!"
	}

	if status >= http.StatusInternalServerError {
		rp.logger.Error(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
	}

	body := ErrorBody{Message: msg, Stack: productionStack}
	if !rp.production {
		body.Stack = err.Error()
	}
	WriteJSON(w, status, body)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid request body").Wrap(err)
	}
	return nil
}
