package user

import (
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/apperror"
	"github.com/geocoder89/taskhub/internal/domain"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy safe to hand out beyond the credential store.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

var ErrNotFound = apperror.NewNotFoundError("user not found", nil)

var (
	ErrUsernameTaken = apperror.NewConflictError("username_taken", "Username already exists.", nil)
	ErrEmailTaken    = apperror.NewConflictError("email_taken", "Email already exists.", nil)
)

type RegisterRequest struct {
	Username string `json:"username" binding:"max=64"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Password string `json:"password" binding:"max=72"`
}

// Presence is checked here rather than in binding tags so every caller gets
// the same message.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return apperror.NewValidationError("Please provide username, email, and password.", nil)
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return apperror.NewValidationError("Please provide username and password.", nil)
	}
	return nil
}

type UpdateProfileRequest struct {
	Username domain.Optional[string] `json:"username"`
	Email    domain.Optional[string] `json:"email"`
}

func (r UpdateProfileRequest) Validate() error {
	if r.Username.Set && strings.TrimSpace(r.Username.Value) == "" {
		return apperror.NewValidationError("Username cannot be empty.", nil)
	}
	if r.Email.Set {
		email := strings.TrimSpace(r.Email.Value)
		if email == "" {
			return apperror.NewValidationError("Email cannot be empty.", nil)
		}
		if !strings.Contains(email, "@") {
			return apperror.NewValidationError("Email must be a valid email address.", nil)
		}
	}
	return nil
}

func (r UpdateProfileRequest) Empty() bool {
	return !r.Username.Set && !r.Email.Set
}
