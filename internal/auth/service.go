package auth

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ayush/portfolio-api/backend/internal/apperr"
	"github.com/ayush/portfolio-api/backend/internal/logging"
	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/store"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 25
	minPasswordLen = 6

	// bcrypt refuses longer input.
	maxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9 _]+$`)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

// ImageRemover deletes stored images by their deletion handle.
type ImageRemover interface {
	Destroy(ctx context.Context, publicID string) error
}

// TokenTTLs sets the lifetimes of issued tokens.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

// Session is the result of signup, login and refresh. RefreshToken is empty
// after a refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         models.UserSummary
}

// Service runs the account lifecycle: signup, login, refresh, password
// change and deletion. Cookie handling stays in the HTTP handler.
type Service struct {
	users    UserStore
	images   ImageRemover
	hasher   *Hasher
	issuer   *Issuer
	ttls     TokenTTLs
	validate *validator.Validate
	log      logging.Logger
}

func NewService(users UserStore, images ImageRemover, hasher *Hasher, issuer *Issuer, ttls TokenTTLs, log logging.Logger) *Service {
	return &Service{
		users:    users,
		images:   images,
		hasher:   hasher,
		issuer:   issuer,
		ttls:     ttls,
		validate: validator.New(),
		log:      log,
	}
}

// Signup validates the input, stores a new user and issues its tokens. Each
// check returns before anything is written.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*Session, error) {
	if !usernamePattern.MatchString(username) {
		return nil, apperr.Validation("Username must be alphanumeric!")
	}
	if !validLength(username, minUsernameLen, maxUsernameLen) {
		return nil, apperr.Validation("Username must have at least 3 characters and max of 25 characters!")
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperr.Validation("Invalid email!")
	}

	// The unique index decides on races; this only gives a friendlier error.
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("User is already exists")
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err)
	}

	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User is already exists").Wrap(err)
		}
		return nil, apperr.Internal(err)
	}

	s.log.Info(ctx, "user signed up", "user_id", user.ID)
	return s.issuePair(user)
}

// Login checks the credentials of username and issues its tokens.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if !ValidUsername(username) {
		return nil, apperr.Validation("Invalid username!")
	}
	if !validLength(password, minPasswordLen, 0) {
		return nil, apperr.Validation("Password must be at least 6 characters!")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Please sign up first!").WithStatus(http.StatusBadRequest)
		}
		return nil, apperr.Internal(err)
	}
	if !s.hasher.Verify(password, user.Password) {
		return nil, apperr.InvalidCredentials("Invalid password!")
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return s.issuePair(user)
}

// Refresh issues a new access token for the owner of refreshToken. The
// caller must also hold a valid session cookie, passed as sessionToken.
func (s *Service) Refresh(ctx context.Context, refreshToken, sessionToken string) (*Session, error) {
	if sessionToken == "" {
		return nil, apperr.Unauthorized("Unauthorized!")
	}
	claims, err := s.issuer.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperr.Unauthorized("Token expired!").Wrap(err)
		}
		return nil, apperr.Unauthorized("Unauthorized!").Wrap(err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found!")
		}
		return nil, apperr.Internal(err)
	}

	access, err := s.issuer.Issue(user.ID, s.ttls.Access)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{AccessToken: access, User: user.Summary()}, nil
}

// ChangePassword replaces the password of userID after checking oldPassword.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == oldPassword {
		return apperr.Validation("New password must be different from old password!")
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found!")
		}
		return apperr.Internal(err)
	}
	if !s.hasher.Verify(oldPassword, user.Password) {
		return apperr.InvalidCredentials("Invalid password!")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found!")
		}
		return apperr.Internal(err)
	}
	s.log.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// DeleteAccount hard-deletes userID. Deleting a missing user succeeds.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return apperr.Internal(err)
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal(err)
	}
	if s.images != nil && user.Avatar.PublicID != "" {
		if err := s.images.Destroy(ctx, user.Avatar.PublicID); err != nil {
			s.log.Warn(ctx, "avatar cleanup failed", "user_id", userID, "err", err)
		}
	}
	s.log.Info(ctx, "account deleted", "user_id", userID)
	return nil
}

// ValidUsername applies the signup username rules: letters, digits, space
// and underscore, 3 to 25 characters.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name) && validLength(name, minUsernameLen, maxUsernameLen)
}

func (s *Service) issuePair(user *models.User) (*Session, error) {
	access, err := s.issuer.Issue(user.ID, s.ttls.Access)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := s.issuer.Issue(user.ID, s.ttls.Refresh)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user.Summary()}, nil
}

// checkPassword applies the length rules for a password about to be hashed.
func checkPassword(p string) error {
	if !validLength(p, minPasswordLen, 0) {
		return apperr.Validation("Password must be at least 6 characters!")
	}
	if len(p) > maxPasswordBytes {
		return apperr.Validation("Password must be at most 72 bytes!")
	}
	return nil
}

// validLength checks the rune count of s; max 0 means unbounded.
func validLength(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(s)
	return n >= lo && (hi == 0 || n <= hi)
}
