package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/taskhub/internal/apperror"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence contract behind the credential store.
// Lookups return user.ErrNotFound on a miss; Create and UpdateProfile return
// user.ErrUsernameTaken or user.ErrEmailTaken when a unique field collides.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.User, error)
}

// CredentialStore owns user identities and password hashes.
// Password hashes never leave it except through FindByUsername and FindByEmail,
// which exist for the authentication service.
type CredentialStore struct {
	users  UserStore
	hasher *security.Hasher
}

func NewCredentialStore(users UserStore, hasher *security.Hasher) *CredentialStore {
	return &CredentialStore{users: users, hasher: hasher}
}

func (s *CredentialStore) Create(ctx context.Context, username, email, plaintext string) (user.User, error) {
	hash, err := s.hasher.HashPassword(plaintext)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return user.User{}, apperror.NewValidationError("Password must be at most 72 bytes.", err)
		}
		return user.User{}, err
	}

	u, err := s.users.Create(ctx, strings.TrimSpace(username), strings.TrimSpace(email), hash)
	if err != nil {
		return user.User{}, err
	}

	return u.Public(), nil
}

func (s *CredentialStore) FindByID(ctx context.Context, id int64) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	return u.Public(), nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (user.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *CredentialStore) UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.User, error) {
	u, err := s.users.UpdateProfile(ctx, id, req)
	if err != nil {
		return user.User{}, err
	}
	return u.Public(), nil
}

func (s *CredentialStore) VerifyPassword(plaintext, storedHash string) bool {
	return s.hasher.CheckPassword(storedHash, plaintext) == nil
}

// hashForTiming produces a throwaway hash at the store's cost, used to make
// the unknown-user login path as slow as the wrong-password path.
func (s *CredentialStore) hashForTiming() (string, error) {
	return s.hasher.HashPassword("taskhub-timing-equalizer")
}
