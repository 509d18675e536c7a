package db

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type Registrar interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
}

// SeedUser is the optional account created at startup.
type SeedUser struct {
	Username string
	Email    string
	Password string
}

// EnsureSeedUser registers the seed account unless it is unconfigured or
// already present. It reports whether a user was created.
func EnsureSeedUser(ctx context.Context, reg Registrar, seed SeedUser) (bool, error) {
	if seed.Username == "" || seed.Email == "" || seed.Password == "" {
		return false, nil
	}

	_, err := reg.Register(ctx, user.RegisterRequest{
		Username: seed.Username,
		Email:    seed.Email,
		Password: seed.Password,
	})

	if err == nil {
		return true, nil
	}

	if errors.Is(err, user.ErrUsernameTaken) || errors.Is(err, user.ErrEmailTaken) {
		return false, nil
	}

	return false, err
}
