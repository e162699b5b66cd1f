package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/models"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc     *Service
	carrier *Carrier
}

func NewHandler(svc *Service, carrier *Carrier) *Handler {
	return &Handler{svc: svc, carrier: carrier}
}

// Signup creates a user and starts its session.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) error {
	var req models.SignupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	sess, err := h.svc.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respondSession(w, http.StatusCreated, "Sign up successfully", sess)
}

// Login authenticates a user and starts its session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var req models.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	sess, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return h.respondSession(w, http.StatusOK, "Login successfully", sess)
}

// Refresh exchanges a refresh token for a new access token. It needs the
// current session cookie as well.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) error {
	var req models.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	cookieToken, _ := h.carrier.Extract(r)
	sess, err := h.svc.Refresh(r.Context(), req.RefreshToken, cookieToken)
	if err != nil {
		return err
	}
	return h.respondSession(w, http.StatusOK, "Refresh successfully", sess)
}

// Logout clears the session cookie. Issued tokens stay valid until they
// expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	h.carrier.Detach(w)
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Logout successfully"})
	return nil
}

// ChangePassword replaces the caller's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	uid := chi.URLParam(r, "uid")
	if err := RequireSelf(r, uid); err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.svc.ChangePassword(r.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Password updated"})
	return nil
}

// DeleteAccount removes the caller's account and ends its session.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) error {
	uid := chi.URLParam(r, "uid")
	if err := RequireSelf(r, uid); err != nil {
		return err
	}
	if err := h.svc.DeleteAccount(r.Context(), uid); err != nil {
		return err
	}
	h.carrier.Detach(w)
	httpx.WriteJSON(w, http.StatusOK, models.Response{Message: "Account deleted!"})
	return nil
}

func (h *Handler) respondSession(w http.ResponseWriter, status int, msg string, sess *Session) error {
	if err := h.carrier.Attach(w, sess.AccessToken); err != nil {
		return apperr.Internal(err)
	}
	httpx.WriteJSON(w, status, models.Response{
		Message:      msg,
		Token:        sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Body:         sess.User,
	})
	return nil
}

// RequireSelf fails with Forbidden unless the authenticated caller is uid.
func RequireSelf(r *http.Request, uid string) error {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return apperr.Forbidden("Forbidden!")
	}
	if id.UserID != uid {
		return apperr.Forbidden("Forbidden!")
	}
	return nil
}
