package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/taskhub/internal/apperror"
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   *auth.Service
	creds *auth.CredentialStore
	users *memory.UsersRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	hasher, err := security.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	users := memory.NewUsersRepo()
	creds := auth.NewCredentialStore(users, hasher)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := auth.NewService(creds, auth.NewManager("test-secret", 0), log)
	require.NoError(t, err)

	return fixture{svc: svc, creds: creds, users: users}
}

func (f fixture) register(t *testing.T, username, email, password string) user.User {
	t.Helper()

	u, err := f.svc.Register(context.Background(), user.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "ada", "ada@example.com", "password123")
	require.NotZero(t, u.ID)
	require.Empty(t, u.PasswordHash)

	byName, err := f.creds.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	require.NotEmpty(t, byName.PasswordHash)
	require.NotEqual(t, "password123", byName.PasswordHash)

	byEmail, err := f.creds.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, byName.PasswordHash, byEmail.PasswordHash)

	byID, err := f.creds.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, byID.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []user.RegisterRequest{
		{Email: "a@example.com", Password: "pw"},
		{Username: "a", Password: "pw"},
		{Username: "a", Email: "a@example.com"},
		{Username: "  ", Email: "a@example.com", Password: "pw"},
	}

	for _, req := range tests {
		_, err := f.svc.Register(context.Background(), req)
		require.True(t, apperror.Is(err, apperror.ValidationError), "req %+v: got %v", req, err)
	}
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada", "ada@example.com", "password123")

	_, err := f.svc.Register(context.Background(), user.RegisterRequest{
		Username: "ada", Email: "other@example.com", Password: "pw",
	})
	require.ErrorIs(t, err, user.ErrUsernameTaken)

	_, err = f.svc.Register(context.Background(), user.RegisterRequest{
		Username: "grace", Email: "ada@example.com", Password: "pw",
	})
	require.ErrorIs(t, err, user.ErrEmailTaken)
	require.True(t, apperror.Is(err, apperror.ConflictError))
}

func TestLogin_TokenResolvesToSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered := f.register(t, "ada", "ada@example.com", "password123")

	res, err := f.svc.Login(ctx, user.LoginRequest{Username: "ada", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Empty(t, res.User.PasswordHash)
	require.Equal(t, registered.ID, res.User.ID)

	resolved, err := f.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, resolved.ID)
	require.Empty(t, resolved.PasswordHash)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ada", "ada@example.com", "password123")

	_, wrongPassword := f.svc.Login(ctx, user.LoginRequest{Username: "ada", Password: "nope"})
	_, unknownUser := f.svc.Login(ctx, user.LoginRequest{Username: "nobody", Password: "password123"})

	require.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, auth.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), user.LoginRequest{Username: "ada"})
	require.True(t, apperror.Is(err, apperror.ValidationError))
}

func TestAuthenticate_RejectsGarbage(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		_, err := f.svc.Authenticate(context.Background(), token)
		require.ErrorIs(t, err, auth.ErrInvalidToken, "token %q", token)
	}
}

func TestAuthenticate_DeletedUserFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "ada", "ada@example.com", "password123")
	res, err := f.svc.Login(ctx, user.LoginRequest{Username: "ada", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, u.ID))

	_, err = f.svc.Authenticate(ctx, res.Token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := f.register(t, "ada", "ada@example.com", "password123")
	f.register(t, "grace", "grace@example.com", "password123")

	// keeping your own username is not a conflict
	u, err := f.svc.UpdateProfile(ctx, ada.ID, user.UpdateProfileRequest{
		Username: domain.Some("ada"),
		Email:    domain.Some(" ada@lovelace.dev "),
	})
	require.NoError(t, err)
	require.Equal(t, "ada", u.Username)
	require.Equal(t, "ada@lovelace.dev", u.Email)
	require.False(t, u.UpdatedAt.Before(ada.UpdatedAt))

	_, err = f.svc.UpdateProfile(ctx, ada.ID, user.UpdateProfileRequest{Username: domain.Some("grace")})
	require.ErrorIs(t, err, user.ErrUsernameTaken)

	_, err = f.svc.UpdateProfile(ctx, ada.ID, user.UpdateProfileRequest{Email: domain.Some("grace@example.com")})
	require.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = f.svc.UpdateProfile(ctx, ada.ID, user.UpdateProfileRequest{Email: domain.Some("not-an-email")})
	require.True(t, apperror.Is(err, apperror.ValidationError))

	unchanged, err := f.svc.UpdateProfile(ctx, ada.ID, user.UpdateProfileRequest{})
	require.NoError(t, err)
	require.Equal(t, "ada@lovelace.dev", unchanged.Email)
}
