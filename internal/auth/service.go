package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/apperror"
	"github.com/geocoder89/taskhub/internal/domain"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

// ErrInvalidCredentials is returned for both an unknown username and a wrong
// password so callers cannot tell the two apart.
var ErrInvalidCredentials = apperror.NewAuthError("Invalid credentials.", nil)

// ErrInvalidToken covers malformed, badly signed, expired and orphaned tokens.
var ErrInvalidToken = apperror.NewAuthError("Invalid or expired access token.", nil)

type Service struct {
	creds     *CredentialStore
	tokens    *Manager
	log       *slog.Logger
	dummyHash string
}

func NewService(creds *CredentialStore, tokens *Manager, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}

	dummy, err := creds.hashForTiming()
	if err != nil {
		return nil, err
	}

	return &Service{
		creds:     creds,
		tokens:    tokens,
		log:       log,
		dummyHash: dummy,
	}, nil
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      user.User
}

func (s *Service) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	// The checks give precise messages; the unique constraints behind Create
	// still catch a concurrent registration that slips between check and insert.
	_, err := s.creds.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return user.User{}, user.ErrUsernameTaken
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, err
	}

	_, err = s.creds.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return user.User{}, user.ErrEmailTaken
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, err
	}

	u, err := s.creds.Create(ctx, username, email, req.Password)
	if err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user_registered", "user_id", u.ID)

	return u, nil
}

func (s *Service) Login(ctx context.Context, req user.LoginRequest) (LoginResult, error) {
	if err := req.Validate(); err != nil {
		return LoginResult{}, err
	}

	u, err := s.creds.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, err
		}

		// burn the same bcrypt work as a real comparison
		s.creds.VerifyPassword(req.Password, s.dummyHash)
		return LoginResult{}, ErrInvalidCredentials
	}

	if !s.creds.VerifyPassword(req.Password, u.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(u.ID, u.Username)
	if err != nil {
		return LoginResult{}, apperror.NewInternalError("Could not generate access token", err)
	}

	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      u.Public(),
	}, nil
}

// Authenticate resolves a bearer token to a live user. The user is looked up
// on every call, so a token outliving its user stops working immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (user.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.User{}, ErrInvalidToken
	}

	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return user.User{}, ErrInvalidToken
	}

	u, err := s.creds.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidToken
		}
		return user.User{}, err
	}

	return u, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (user.User, error) {
	return s.creds.FindByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req user.UpdateProfileRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	if req.Username.Set {
		req.Username = domain.Some(strings.TrimSpace(req.Username.Value))

		existing, err := s.creds.FindByUsername(ctx, req.Username.Value)
		switch {
		case err == nil && existing.ID != userID:
			return user.User{}, user.ErrUsernameTaken
		case err != nil && !errors.Is(err, user.ErrNotFound):
			return user.User{}, err
		}
	}

	if req.Email.Set {
		req.Email = domain.Some(strings.TrimSpace(req.Email.Value))

		existing, err := s.creds.FindByEmail(ctx, req.Email.Value)
		switch {
		case err == nil && existing.ID != userID:
			return user.User{}, user.ErrEmailTaken
		case err != nil && !errors.Is(err, user.ErrNotFound):
			return user.User{}, err
		}
	}

	if req.Empty() {
		return s.creds.FindByID(ctx, userID)
	}

	return s.creds.UpdateProfile(ctx, userID, req)
}
