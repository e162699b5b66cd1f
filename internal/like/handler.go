// Package like toggles likes on projects and comments. Each toggle is one
// atomic set update in the store.
package like

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/auth"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/store"
)

// Store defines the interface for like persistence.
type Store interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	AddProjectLike(ctx context.Context, projectID, userID string) (models.UpdateResult, error)
	RemoveProjectLike(ctx context.Context, projectID, userID string) (models.UpdateResult, error)
	AddCommentLike(ctx context.Context, commentID, userID string) (models.UpdateResult, error)
	RemoveCommentLike(ctx context.Context, commentID, userID string) (models.UpdateResult, error)
}

// UserLookup resolves the users behind a project's likes.
type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type toggleFunc func(ctx context.Context, id, userID string) (models.UpdateResult, error)

// Handler holds like HTTP handlers.
type Handler struct {
	likes Store
	users UserLookup
}

func NewHandler(likes Store, users UserLookup) *Handler {
	return &Handler{likes: likes, users: users}
}

// LikeProject adds the caller to a project's likes. Body: {"pid": "..."}.
func (h *Handler) LikeProject(w http.ResponseWriter, r *http.Request) error {
	var req models.LikeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	return h.toggle(w, r, h.likes.AddProjectLike, req.ProjectID, "Project not found", "liked")
}

// UnlikeProject removes the caller from a project's likes. Query: ?pid=.
func (h *Handler) UnlikeProject(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, h.likes.RemoveProjectLike, r.URL.Query().Get("pid"), "Project not found", "unliked")
}

// LikeComment adds the caller to a comment's likes. Body: {"cid": "..."}.
func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) error {
	var req models.CommentLikeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	return h.toggle(w, r, h.likes.AddCommentLike, req.CommentID, "Comment not found", "liked")
}

// UnlikeComment removes the caller from a comment's likes. Query: ?cid=.
func (h *Handler) UnlikeComment(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, h.likes.RemoveCommentLike, r.URL.Query().Get("cid"), "Comment not found", "unliked")
}

// Likers lists who liked a project.
func (h *Handler) Likers(w http.ResponseWriter, r *http.Request) error {
	p, err := h.likes.GetProject(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Not Found")
		}
		return apperr.Internal(err)
	}
	users, err := h.users.GetUsersByIDs(r.Context(), p.Likes)
	if err != nil {
		return apperr.Internal(err)
	}
	out := make([]models.Liker, 0, len(users))
	for _, u := range users {
		out = append(out, models.Liker{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "OK", Body: out})
	return nil
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc, id, missing, msg string) error {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return apperr.Forbidden("Forbidden!")
	}
	if id == "" {
		return apperr.Validation("Missing id!")
	}
	res, err := fn(r.Context(), id, caller.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(missing)
		}
		return apperr.Internal(err)
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: msg, Body: res})
	return nil
}
