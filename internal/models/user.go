package models

import (
	"regexp"
	"strings"
	"time"
)

// UserRole represents a user's permission level
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents an account that can authenticate and purchase
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CartID       int       `json:"cart_id" db:"cart_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserRegisterRequest represents the data needed to register a user
type UserRegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

var userEmailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validate validates registration data
func (req *UserRegisterRequest) Validate() error {
	if req.Email == "" {
		return NewValidationError("email", "email is required")
	}
	if !userEmailRegex.MatchString(req.Email) {
		return NewValidationError("email", "email format is invalid")
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if len(req.Password) < 8 {
		return NewValidationError("password", "password must be at least 8 characters")
	}
	return nil
}

// IsAdmin returns true for administrator accounts
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
