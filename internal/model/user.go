package model

import (
	"database/sql"
	"time"
)

// User represents a user in the database.
type User struct {
	ID             string
	Name           string
	Email          string
	Password       string
	ProfilePicture string
	Bio            sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents a user login request. Username may hold either the
// account name or the email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response with a JWT token and user info.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	Bio            *string   `json:"bio"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewUserResponse strips the credential from u.
func NewUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
	if u.Bio.Valid {
		bio := u.Bio.String
		resp.Bio = &bio
	}
	return resp
}
