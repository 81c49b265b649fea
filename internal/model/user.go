package model

import (
	"errors"
	"time"
)

// User is the account identity that owns every other entity.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CurrentUser is the authenticated user's own details, extended with the id
// and image of their profile.
type CurrentUser struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	ProfileID    int64  `db:"profile_id" json:"profile_id"`
	ProfileImage string `db:"profile_image" json:"profile_image"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
