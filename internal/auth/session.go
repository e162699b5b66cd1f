package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// SessionCookie carries the access token between requests.
const SessionCookie = "jwtk"

// CookieOptions are the attributes of the session cookie.
type CookieOptions struct {
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieOptions returns strict, secure-only attributes in production
// and relaxed ones for local cross-origin development.
func DefaultCookieOptions(production bool, maxAge time.Duration) CookieOptions {
	if production {
		return CookieOptions{MaxAge: maxAge, Secure: true, SameSite: http.SameSiteStrictMode}
	}
	return CookieOptions{MaxAge: maxAge, Secure: false, SameSite: http.SameSiteLaxMode}
}

// Carrier binds tokens to a signed, HTTP-only cookie. The value is
// HMAC-signed with the cookie secret but not encrypted.
type Carrier struct {
	codec *securecookie.SecureCookie
	opts  CookieOptions
	now   func() time.Time
}

func NewCarrier(secret []byte, opts CookieOptions) *Carrier {
	codec := securecookie.New(secret, nil)
	codec.MaxAge(int(opts.MaxAge / time.Second))
	return &Carrier{codec: codec, opts: opts, now: time.Now}
}

// Attach sets the session cookie to a signed copy of token.
func (c *Carrier) Attach(w http.ResponseWriter, token string) error {
	value, err := c.codec.Encode(SessionCookie, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  c.now().Add(c.opts.MaxAge),
		MaxAge:   int(c.opts.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
	return nil
}

// Detach replaces the session cookie with an already expired one.
func (c *Carrier) Detach(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
}

// Extract returns the token in the session cookie. A missing, tampered or
// timed-out cookie reports false, never an error.
func (c *Carrier) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var token string
	if err := c.codec.Decode(SessionCookie, cookie.Value, &token); err != nil {
		return "", false
	}
	return token, token != ""
}
