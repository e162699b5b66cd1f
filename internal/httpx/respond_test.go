package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/logging"
)

func serve(t *testing.T, rp *Responder, fn HandlerFunc) (*httptest.ResponseRecorder, ErrorBody) {
	t.Helper()
	rr := httptest.NewRecorder()
	rp.Handle(fn).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body ErrorBody
	if rr.Code >= 400 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func TestResponder_AppError(t *testing.T) {
	rp := NewResponder(false, logging.Nop())

	rr, body := serve(t, rp, func(w http.ResponseWriter, r *http.Request) error {
		return fmt.Errorf("signup: %w", apperr.Validation("Invalid email!"))
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid email!", body.Message)
	assert.Contains(t, body.Stack, "Invalid email!")
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestResponder_UnknownErrorIsGeneric500(t *testing.T) {
	rp := NewResponder(false, logging.Nop())

	rr, body := serve(t, rp, func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("mongo: connection refused")
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Server error", body.Message)
}

func TestResponder_InternalHidesCauseMessage(t *testing.T) {
	rp := NewResponder(true, logging.Nop())

	rr, body := serve(t, rp, func(w http.ResponseWriter, r *http.Request) error {
		return apperr.Internal(errors.New("secret detail"))
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Server error", body.Message)
	assert.Equal(t, ":(", body.Stack)
	assert.NotContains(t, rr.Body.String(), "secret detail")
}

func TestResponder_TokenExpiredAlways401(t *testing.T) {
	rp := NewResponder(true, logging.Nop())

	rr, body := serve(t, rp, func(w http.ResponseWriter, r *http.Request) error {
		return fmt.Errorf("refresh: %w", apperr.ErrTokenExpired)
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Token expired!", body.Message)

	rr, body = serve(t, rp, func(w http.ResponseWriter, r *http.Request) error {
		return apperr.NotFound("User not found!").Wrap(apperr.ErrTokenExpired)
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "User not found!", body.Message)
}

func TestResponder_SuccessPassesThrough(t *testing.T) {
	rp := NewResponder(false, logging.Nop())

	rr, _ := serve(t, rp, func(w http.ResponseWriter, r *http.Request) error {
		WriteJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
		return nil
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rr.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "a", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(r, &v)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
