package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/logging"
)

type handlerFixture struct {
	svc     *Service
	users   *memUsers
	issuer  *Issuer
	carrier *Carrier
	router  http.Handler
}

// identityFromCookie stands in for the authentication gate.
func identityFromCookie(c *Carrier, iss *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok, ok := c.Extract(r); ok {
				if claims, err := iss.Verify(tok); err == nil {
					r = r.WithContext(ContextWithIdentity(r.Context(), Identity{UserID: claims.UserID, Token: tok}))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	svc, users, _, iss := newTestService(t)
	carrier := NewCarrier(cookieSecret, DefaultCookieOptions(false, 24*time.Hour))
	h := NewHandler(svc, carrier)
	rp := httpx.NewResponder(false, logging.Nop())

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", rp.Handle(h.Signup))
		r.Post("/login", rp.Handle(h.Login))
		r.Post("/refresh", rp.Handle(h.Refresh))
		r.Group(func(r chi.Router) {
			r.Use(identityFromCookie(carrier, iss))
			r.Patch("/changePassword/{uid}", rp.Handle(h.ChangePassword))
			r.Delete("/logout", rp.Handle(h.Logout))
			r.Delete("/{uid}", rp.Handle(h.DeleteAccount))
		})
	})
	return &handlerFixture{svc: svc, users: users, issuer: iss, carrier: carrier, router: r}
}

func (f *handlerFixture) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie set", SessionCookie)
	return nil
}

func str(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestHandler_Signup(t *testing.T) {
	f := newHandlerFixture(t)

	rr, out := f.do(t, http.MethodPost, "/auth/signup",
		`{"username":"test user","email":"test@example.com","password":"testpass"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Sign up successfully", str(t, out["message"]))
	assert.NotEmpty(t, str(t, out["token"]))
	assert.NotEmpty(t, str(t, out["refreshToken"]))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out["body"], &body))
	assert.ElementsMatch(t, []string{"_id", "username", "email", "avatar", "role"}, keys(body))
	assert.Equal(t, "test user", str(t, body["username"]))
	assert.Equal(t, "test@example.com", str(t, body["email"]))
	assert.Equal(t, "user", str(t, body["role"]))
	assert.NotContains(t, rr.Body.String(), "$2a$", "hash must never leave the server")

	cookie := sessionCookie(t, rr)
	assert.True(t, cookie.HttpOnly)
	tok, ok := f.carrier.Extract(requestWith(cookie))
	require.True(t, ok)
	assert.Equal(t, str(t, out["token"]), tok, "cookie carries the access token")
}

func TestHandler_SignupValidationError(t *testing.T) {
	f := newHandlerFixture(t)

	rr, out := f.do(t, http.MethodPost, "/auth/signup", `{"username":"te","email":"test@example.com","password":"testpass"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Username must have at least 3 characters and max of 25 characters!", str(t, out["message"]))
	assert.Empty(t, rr.Result().Cookies())

	rr, out = f.do(t, http.MethodPost, "/auth/signup", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", str(t, out["message"]))
}

func TestHandler_LoginWrongPassword(t *testing.T) {
	f := newHandlerFixture(t)
	_, err := f.svc.Signup(context.Background(), "test user", "test@example.com", "testpass")
	require.NoError(t, err)

	rr, out := f.do(t, http.MethodPost, "/auth/login", `{"username":"test user","password":"wrongpw"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid password!", str(t, out["message"]))
	assert.NotContains(t, out, "token")
	assert.Empty(t, rr.Result().Cookies())
}

func TestHandler_LoginAndRefresh(t *testing.T) {
	f := newHandlerFixture(t)
	_, err := f.svc.Signup(context.Background(), "test user", "test@example.com", "testpass")
	require.NoError(t, err)

	rr, out := f.do(t, http.MethodPost, "/auth/login", `{"username":"test user","password":"testpass"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Login successfully", str(t, out["message"]))
	cookie := sessionCookie(t, rr)
	refresh := str(t, out["refreshToken"])

	rr, out = f.do(t, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+refresh+`"}`, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Refresh successfully", str(t, out["message"]))
	assert.NotContains(t, out, "refreshToken")

	claims, err := f.issuer.Verify(str(t, out["token"]))
	require.NoError(t, err)
	refreshClaims, err := f.issuer.Verify(refresh)
	require.NoError(t, err)
	assert.Equal(t, refreshClaims.UserID, claims.UserID)
	sessionCookie(t, rr)

	rr, out = f.do(t, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Unauthorized!", str(t, out["message"]))
}

func TestHandler_LogoutClearsCookie(t *testing.T) {
	f := newHandlerFixture(t)

	rr, out := f.do(t, http.MethodDelete, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Logout successfully", str(t, out["message"]))
	assert.Equal(t, -1, sessionCookie(t, rr).MaxAge)
}

func TestHandler_ChangePasswordAndDelete(t *testing.T) {
	f := newHandlerFixture(t)
	rr, out := f.do(t, http.MethodPost, "/auth/signup",
		`{"username":"test user","email":"test@example.com","password":"testpass"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	cookie := sessionCookie(t, rr)
	var body struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(out["body"], &body))

	rr, out = f.do(t, http.MethodPatch, "/auth/changePassword/"+body.ID,
		`{"oldPassword":"testpass","newPassword":"testpass"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "New password must be different from old password!", str(t, out["message"]))

	rr, _ = f.do(t, http.MethodPatch, "/auth/changePassword/someone-else",
		`{"oldPassword":"testpass","newPassword":"newpass1"}`, cookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, out = f.do(t, http.MethodPatch, "/auth/changePassword/"+body.ID,
		`{"oldPassword":"testpass","newPassword":"newpass1"}`, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Password updated", str(t, out["message"]))

	rr, _ = f.do(t, http.MethodDelete, "/auth/someone-else", "", cookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, out = f.do(t, http.MethodDelete, "/auth/"+body.ID, "", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Account deleted!", str(t, out["message"]))
	assert.Equal(t, -1, sessionCookie(t, rr).MaxAge)
	assert.Empty(t, f.users.byID)
}

func requestWith(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	return req
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
