package auth

import (
	"errors"
	"time"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sentinel errors for the auth module.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenInvalid       = errors.New("auth: token invalid or expired")
)

// Token is a bearer credential issued on login.
type Token struct {
	Value     string    `json:"token"`
	UserID    int64     `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
