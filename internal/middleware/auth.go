package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/auth"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/store"
)

const bearer = "Bearer "

const (
	gateAuthenticate = "authenticate"
	gateAuthorize    = "authorize"
)

// TokenVerifier checks a token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// CookieReader returns the token held in the signed session cookie.
type CookieReader interface {
	Extract(r *http.Request) (string, bool)
}

// RoleLookup loads the user record that holds the authoritative role.
type RoleLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GateRecorder counts rejected requests.
type GateRecorder interface {
	GateRejected(gate, reason string)
}

// Gates builds the authenticate and authorize middleware.
type Gates struct {
	tokens  TokenVerifier
	cookies CookieReader
	users   RoleLookup
	rp      *httpx.Responder
	rec     GateRecorder
}

func NewGates(tokens TokenVerifier, cookies CookieReader, users RoleLookup, rp *httpx.Responder, rec GateRecorder) *Gates {
	return &Gates{tokens: tokens, cookies: cookies, users: users, rp: rp, rec: rec}
}

// RequireAuth needs both the bearer header and the session cookie, holding
// the same verified token. The identity is stored in the request context.
func (g *Gates) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headerToken, headerOK := extractBearerToken(r.Header.Get("Authorization"))
		cookieToken, cookieOK := g.cookies.Extract(r)
		if !headerOK || !cookieOK {
			g.reject(w, r, gateAuthenticate, "missing", apperr.Forbidden("Forbidden!"))
			return
		}

		if subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) != 1 {
			g.reject(w, r, gateAuthenticate, "mismatch", apperr.Unauthorized("Unauthorized!"))
			return
		}

		claims, err := g.tokens.Verify(cookieToken)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				g.reject(w, r, gateAuthenticate, "expired", apperr.Unauthorized("Token expired!").Wrap(err))
				return
			}
			g.reject(w, r, gateAuthenticate, "invalid", apperr.Unauthorized("Unauthorized!").Wrap(err))
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), auth.Identity{UserID: claims.UserID, Token: cookieToken})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole re-reads the caller's role from the user store and lets the
// request through only when it equals role. It must run after RequireAuth.
func (g *Gates) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				g.reject(w, r, gateAuthorize, "anonymous", apperr.Forbidden("Forbidden!"))
				return
			}

			user, err := g.users.GetUserByID(r.Context(), id.UserID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				g.reject(w, r, gateAuthorize, "unknown_user", apperr.Forbidden("Forbidden!"))
				return
			case err != nil:
				g.rp.Error(w, r, apperr.Internal(err))
				return
			case user.Role != role:
				g.reject(w, r, gateAuthorize, "role", apperr.Forbidden("Forbidden!"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gates) reject(w http.ResponseWriter, r *http.Request, gate, reason string, err error) {
	if g.rec != nil {
		g.rec.GateRejected(gate, reason)
	}
	g.rp.Error(w, r, err)
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	return token, token != ""
}
