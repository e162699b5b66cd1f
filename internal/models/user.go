package models

import "time"

// Role is the authorization level stored on a user record.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Image references an object in the image store. PublicID is the deletion
// handle, URL the public address.
type Image struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"imgUrl"    bson:"imgUrl"`
}

// User is the identity and credential holder.
type User struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	Role      Role      `json:"role"`
	Avatar    Image     `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the public view returned by the auth endpoints.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   Image  `json:"avatar"`
	Role     Role   `json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar, Role: u.Role}
}

// Profile is what anyone may see about a user.
type Profile struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   Image  `json:"avatar"`
	Role     Role   `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Avatar: u.Avatar, Role: u.Role}
}

// Liker is a user as listed on a project's likes.
type Liker struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignupRequest is the JSON body for POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the JSON body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest is the JSON body for PATCH /auth/changePassword/{uid}.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateUserRequest is the JSON body for PATCH /user/{uid}.
type UpdateUserRequest struct {
	Username string `json:"username"`
}
