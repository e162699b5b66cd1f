// Package comment serves project comments and their reply threads.
package comment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/auth"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/logging"
	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/store"
)

const maxMessageRunes = 1000

// Store defines the interface for comment persistence.
type Store interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, projectID string) ([]models.Comment, error)
	ListReplies(ctx context.Context, projectID, groupID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, c *models.Comment) error
}

// UserLookup resolves comment senders.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// Handler holds comment HTTP handlers.
type Handler struct {
	comments Store
	users    UserLookup
	log      logging.Logger
}

func NewHandler(comments Store, users UserLookup, log logging.Logger) *Handler {
	return &Handler{comments: comments, users: users, log: log}
}

// List returns the root comments of a project.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	comments, err := h.comments.ListComments(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		return apperr.Internal(err)
	}
	if len(comments) == 0 {
		return apperr.NotFound("No comments found")
	}
	views, err := h.views(r.Context(), comments)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "OK", Body: views})
	return nil
}

// Replies returns the replies of one root comment.
func (h *Handler) Replies(w http.ResponseWriter, r *http.Request) error {
	replies, err := h.comments.ListReplies(r.Context(), chi.URLParam(r, "pid"), chi.URLParam(r, "gid"))
	if err != nil {
		return apperr.Internal(err)
	}
	views, err := h.views(r.Context(), replies)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Success", Body: views})
	return nil
}

// Add posts a root comment as the authenticated caller.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) error {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return apperr.Forbidden("Forbidden!")
	}
	var req models.AddCommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	msg, err := cleanMessage(req.Message)
	if err != nil {
		return err
	}
	if err := h.requireProject(r.Context(), req.ProjectID); err != nil {
		return err
	}

	c := &models.Comment{ProjectID: req.ProjectID, Sender: id.UserID, Message: msg}
	return h.create(w, r, c)
}

// Reply posts a reply under a root comment of the same project.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) error {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return apperr.Forbidden("Forbidden!")
	}
	var req models.ReplyCommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	msg, err := cleanMessage(req.Message)
	if err != nil {
		return err
	}
	if err := h.requireProject(r.Context(), req.ProjectID); err != nil {
		return err
	}
	root, err := h.comments.GetComment(r.Context(), req.GroupID)
	if err != nil {
		return notFound(err, "Comment not found")
	}
	if root.IsReply || root.ProjectID != req.ProjectID {
		return apperr.NotFound("Comment not found")
	}

	c := &models.Comment{
		ProjectID:  req.ProjectID,
		Sender:     id.UserID,
		Message:    msg,
		IsReply:    true,
		ReplyGroup: root.ID,
	}
	return h.create(w, r, c)
}

// Delete removes a comment. Only its sender or an admin may do so.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return apperr.Forbidden("Forbidden!")
	}
	c, err := h.comments.GetComment(r.Context(), chi.URLParam(r, "cid"))
	if err != nil {
		return notFound(err, "Comment not found")
	}
	if c.ProjectID != chi.URLParam(r, "pid") {
		return apperr.NotFound("Comment not found")
	}
	if c.Sender != id.UserID {
		caller, err := h.users.GetUserByID(r.Context(), id.UserID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return apperr.Forbidden("Forbidden!")
		case err != nil:
			return apperr.Internal(err)
		case caller.Role != models.RoleAdmin:
			return apperr.Forbidden("Forbidden!")
		}
	}

	if err := h.comments.DeleteComment(r.Context(), c); err != nil {
		return notFound(err, "Comment not found")
	}
	h.log.Info(r.Context(), "comment deleted", "comment_id", c.ID, "by", id.UserID)
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Successfully deleted"})
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, c *models.Comment) error {
	if err := h.comments.CreateComment(r.Context(), c); err != nil {
		return notFound(err, "Project not found")
	}
	views, err := h.views(r.Context(), []models.Comment{*c})
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Successfully added", Body: views[0]})
	return nil
}

func (h *Handler) requireProject(ctx context.Context, projectID string) error {
	if _, err := h.comments.GetProject(ctx, projectID); err != nil {
		return notFound(err, "Project not found")
	}
	return nil
}

// views resolves senders in one lookup. A deleted sender shows as null.
func (h *Handler) views(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]string, 0, len(comments))
	seen := make(map[string]bool, len(comments))
	for _, c := range comments {
		if !seen[c.Sender] {
			seen[c.Sender] = true
			ids = append(ids, c.Sender)
		}
	}
	users, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	senders := make(map[string]*models.Sender, len(users))
	for _, u := range users {
		senders[u.ID] = &models.Sender{Username: u.Username, Role: u.Role}
	}

	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.CommentView{
			ID:            c.ID,
			ProjectID:     c.ProjectID,
			Message:       c.Message,
			Sender:        senders[c.Sender],
			IsReply:       c.IsReply,
			HasReply:      c.HasReply,
			TotalLikes:    len(c.Likes),
			TotalDislikes: len(c.Dislikes),
			ReplyGroup:    c.ReplyGroup,
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		})
	}
	return out, nil
}

func cleanMessage(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", apperr.Validation("Message is required!")
	}
	if len([]rune(msg)) > maxMessageRunes {
		return "", apperr.Validation("Message is too long!")
	}
	return msg, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err)
}
