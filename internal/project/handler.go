// Package project serves the portfolio projects: a public paginated
// listing and admin-only create, update and delete.
package project

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/logging"
	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/store"
)

const (
	defaultPage  = 1
	defaultLimit = 6
	maxLimit     = 50
	maxPage      = math.MaxInt64 / maxLimit
	summaryRunes = 60
	imageField   = "image"
	imageFolder  = "projects"
)

// Store defines the interface for project persistence.
type Store interface {
	ListProjects(ctx context.Context, q models.ProjectQuery) ([]models.Project, int64, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, id string, in models.ProjectInput) (models.UpdateResult, error)
	DeleteProject(ctx context.Context, id string) (*models.Project, error)
}

// ImageStore uploads and deletes project images.
type ImageStore interface {
	Upload(ctx context.Context, folder string, data []byte, contentType string) (models.Image, error)
	Destroy(ctx context.Context, publicID string) error
}

// Viewer recovers the caller's user id from the session cookie, if any.
// It only drives the "liked" flag.
type Viewer interface {
	UserID(r *http.Request) string
}

// Handler holds project HTTP handlers.
type Handler struct {
	projects Store
	images   ImageStore
	viewer   Viewer
	maxImage int64
	log      logging.Logger
}

func NewHandler(projects Store, images ImageStore, viewer Viewer, maxImage int64, log logging.Logger) *Handler {
	return &Handler{projects: projects, images: images, viewer: viewer, maxImage: maxImage, log: log}
}

// List returns one page of projects, optionally filtered by title.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	q := parseQuery(r)
	projects, total, err := h.projects.ListProjects(r.Context(), q)
	if err != nil {
		return apperr.Internal(err)
	}
	if len(projects) == 0 {
		return apperr.NotFound("Projects not found")
	}

	viewer := h.viewerID(r)
	out := make([]models.ProjectSummary, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		out = append(out, models.ProjectSummary{
			ID:            p.ID,
			Title:         p.Title,
			GitHub:        p.GitHub,
			URL:           p.URL,
			Image:         p.Image,
			Description:   truncate(p.Description, summaryRunes),
			TotalLikes:    len(p.Likes),
			TotalComments: len(p.Comments),
			Liked:         p.LikedBy(viewer),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, models.Response{
		Message:    "OK",
		Body:       out,
		Pagination: models.NewPagination(total, q.Page, q.Limit),
	})
	return nil
}

// Get returns a single project.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	p, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return notFound(err, "Project not found")
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{
		Message: "OK",
		Body: models.ProjectDetail{
			ID:            p.ID,
			Title:         p.Title,
			Description:   p.Description,
			GitHub:        p.GitHub,
			URL:           p.URL,
			VideoID:       p.VideoID,
			Image:         p.Image,
			TotalLikes:    len(p.Likes),
			TotalComments: len(p.Comments),
			Liked:         p.LikedBy(h.viewerID(r)),
		},
	})
	return nil
}

// Create stores a project from a multipart form with an "image" file.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	upload, err := httpx.ReadImage(r, imageField, h.maxImage)
	if err != nil {
		return err
	}
	in := models.ProjectInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		URL:         r.FormValue("url"),
		GitHub:      r.FormValue("github"),
		VideoID:     r.FormValue("videoId"),
	}
	if in.Title == "" || in.Description == "" {
		return apperr.Validation("Title and description are required!")
	}

	img, err := h.images.Upload(r.Context(), imageFolder, upload.Data, upload.ContentType)
	if err != nil {
		return apperr.Internal(err)
	}
	p := &models.Project{
		Title:       in.Title,
		Description: in.Description,
		Image:       img,
		VideoID:     in.VideoID,
		URL:         in.URL,
		GitHub:      in.GitHub,
	}
	if err := h.projects.CreateProject(r.Context(), p); err != nil {
		h.destroy(r.Context(), img.PublicID)
		return apperr.Internal(err)
	}

	h.log.Info(r.Context(), "project created", "project_id", p.ID)
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Add project!", Body: map[string]string{"id": p.ID}})
	return nil
}

// Update changes the non-empty fields of a project.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	var in models.ProjectInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		return err
	}
	res, err := h.projects.UpdateProject(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return notFound(err, "Project not found")
	}
	if res.Matched == 0 {
		return apperr.NotFound("Project not found")
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Project successfully updated", Body: res})
	return nil
}

// Delete removes a project, its comments and its image.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	p, err := h.projects.DeleteProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return notFound(err, "Project not found!")
	}
	h.destroy(r.Context(), p.Image.PublicID)

	h.log.Info(r.Context(), "project deleted", "project_id", p.ID)
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Deleted project successfully"})
	return nil
}

func (h *Handler) destroy(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := h.images.Destroy(ctx, publicID); err != nil {
		h.log.Warn(ctx, "image cleanup failed", "public_id", publicID, "err", err)
	}
}

func (h *Handler) viewerID(r *http.Request) string {
	if h.viewer == nil {
		return ""
	}
	return h.viewer.UserID(r)
}

func parseQuery(r *http.Request) models.ProjectQuery {
	q := r.URL.Query()
	page, err := strconv.ParseInt(q.Get("page"), 10, 64)
	if err != nil || page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err := strconv.ParseInt(q.Get("limit"), 10, 64)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return models.ProjectQuery{Search: strings.TrimSpace(q.Get("search")), Page: page, Limit: limit}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err)
}
