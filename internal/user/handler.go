// Package user serves public profiles and lets users rename themselves and
// change their avatar.
package user

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

const (
	avatarField  = "image"
	avatarFolder = "avatars"
)

// Store defines the interface for user profile persistence.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUsername(ctx context.Context, id, username string) error
	UpdateAvatar(ctx context.Context, id string, avatar models.Image) error
}

// ImageStore uploads and deletes avatars.
type ImageStore interface {
	Upload(ctx context.Context, folder string, data []byte, contentType string) (models.Image, error)
	Destroy(ctx context.Context, publicID string) error
}

type Handler struct {
	users    Store
	images   ImageStore
	maxImage int64
	log      logging.Logger
}

func NewHandler(users Store, images ImageStore, maxImage int64, log logging.Logger) *Handler {
	return &Handler{users: users, images: images, maxImage: maxImage, log: log}
}

// Get returns the public profile of a user.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	u, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		return userNotFound(err)
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "user found", Body: u.Profile()})
	return nil
}

// Rename changes the caller's username.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) error {
	uid := chi.URLParam(r, "uid")
	if err := auth.RequireSelf(r, uid); err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Username)
	if !auth.ValidUsername(name) {
		return apperr.Validation("Invalid username!")
	}

	if err := h.users.UpdateUsername(r.Context(), uid, name); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("Username is already taken").Wrap(err)
		}
		return userNotFound(err)
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "User updated!"})
	return nil
}

// UpdatePicture replaces the caller's avatar. The old image is removed once
// the new one is stored.
func (h *Handler) UpdatePicture(w http.ResponseWriter, r *http.Request) error {
	uid := chi.URLParam(r, "uid")
	if err := auth.RequireSelf(r, uid); err != nil {
		return err
	}
	upload, err := httpx.ReadImage(r, avatarField, h.maxImage)
	if err != nil {
		return err
	}
	u, err := h.users.GetUserByID(r.Context(), uid)
	if err != nil {
		return userNotFound(err)
	}
	old := u.Avatar.PublicID

	img, err := h.images.Upload(r.Context(), avatarFolder, upload.Data, upload.ContentType)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := h.users.UpdateAvatar(r.Context(), uid, img); err != nil {
		h.destroy(r.Context(), img.PublicID)
		return userNotFound(err)
	}
	h.destroy(r.Context(), old)

	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Profile picture successfully updated", Body: img})
	return nil
}

func (h *Handler) destroy(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := h.images.Destroy(ctx, publicID); err != nil {
		h.log.Warn(ctx, "avatar cleanup failed", "public_id", publicID, "err", err)
	}
}

func userNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found!")
	}
	return apperr.Internal(err)
}
