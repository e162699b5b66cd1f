package middleware

import (
	"net"
	"net/http"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/logging"
	"github.com/ayush/portfolio-api/backend/internal/ratelimit"
)

// RateRecorder counts rejected requests.
type RateRecorder interface {
	RateLimited()
}

// RateLimit rejects clients over their budget with 429. Requests pass when
// the limiter itself fails.
func RateLimit(l ratelimit.Limiter, rp *httpx.Responder, log logging.Logger, rec RateRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn(r.Context(), "rate limiter unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				if rec != nil {
					rec.RateLimited()
				}
				rp.Error(w, r, apperr.TooManyRequests("Too many requests, please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP uses RemoteAddr, which chi's RealIP has already rewritten from
// the forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
