package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/portfolio-api/backend/internal/auth"
	"github.com/ayush/portfolio-api/backend/internal/comment"
	"github.com/ayush/portfolio-api/backend/internal/config"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/like"
	"github.com/ayush/portfolio-api/backend/internal/logging"
	"github.com/ayush/portfolio-api/backend/internal/metrics"
	"github.com/ayush/portfolio-api/backend/internal/middleware"
	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/project"
	"github.com/ayush/portfolio-api/backend/internal/ratelimit"
	"github.com/ayush/portfolio-api/backend/internal/user"
)

// multipartSlack leaves room for form boundaries and text fields on top of
// the image size limit.
const multipartSlack = 64 << 10

type app struct {
	cfg     *config.Config
	log     logging.Logger
	rp      *httpx.Responder
	metrics *metrics.Metrics
	limiter ratelimit.Limiter
	gates   *middleware.Gates

	auth     *auth.Handler
	users    *user.Handler
	projects *project.Handler
	comments *comment.Handler
	likes    *like.Handler
}

func (a *app) router() http.Handler {
	h := a.rp.Handle
	authn := a.gates.RequireAuth
	admin := a.gates.RequireRole(models.RoleAdmin)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(a.log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders(a.cfg.IsProduction()))
	r.Use(a.metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(a.limiter, a.rp, a.log, a.metrics))
	r.Use(middleware.MaxBodyBytes(a.cfg.MaxUploadBytes + multipartSlack))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Hello world!"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h(a.auth.Signup))
		r.Post("/login", h(a.auth.Login))
		r.Post("/refresh", h(a.auth.Refresh))
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Patch("/changePassword/{uid}", h(a.auth.ChangePassword))
			r.Delete("/logout", h(a.auth.Logout))
			r.Delete("/{uid}", h(a.auth.DeleteAccount))
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Get("/{uid}", h(a.users.Get))
		r.With(authn).Patch("/{uid}", h(a.users.Rename))
		r.With(authn).Patch("/picture/{uid}", h(a.users.UpdatePicture))
	})

	r.Route("/project", func(r chi.Router) {
		r.Get("/", h(a.projects.List))
		r.Get("/{id}", h(a.projects.Get))
		r.Group(func(r chi.Router) {
			r.Use(authn, admin)
			r.Post("/", h(a.projects.Create))
			r.Patch("/{id}", h(a.projects.Update))
			r.Delete("/{id}", h(a.projects.Delete))
		})
	})

	r.Route("/comment", func(r chi.Router) {
		r.Get("/{pid}", h(a.comments.List))
		r.Get("/{pid}/{gid}", h(a.comments.Replies))
		r.With(authn).Post("/", h(a.comments.Add))
		r.With(authn).Post("/reply", h(a.comments.Reply))
		r.With(authn).Delete("/{pid}/{cid}", h(a.comments.Delete))
	})

	r.Route("/like", func(r chi.Router) {
		r.Use(authn)
		r.Post("/", h(a.likes.LikeProject))
		r.Delete("/", h(a.likes.UnlikeProject))
		r.Post("/comment", h(a.likes.LikeComment))
		r.Delete("/comment", h(a.likes.UnlikeComment))
		r.With(admin).Get("/{pid}", h(a.likes.Likers))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorBody{Message: "Not Found"})
	})
	return r
}
