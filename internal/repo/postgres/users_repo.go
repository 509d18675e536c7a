package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

// Constraint names from the users migration.
const (
	constraintUsernameUnique = "users_username_uniq"
	constraintEmailUnique    = "users_email_uniq"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool:     pool,
		observer: newObserver(prom),
	}
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	var u user.User

	err := r.observe(ctx, "users.create", func(ctx context.Context) error {
		return scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING `+userColumns,
			username, email, passwordHash,
		), &u)
	})
	if err != nil {
		return user.User{}, mapUserConflict(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (user.User, error) {
	var s setList
	if req.Username.Set {
		s.add("username", req.Username.Value)
	}
	if req.Email.Set {
		s.add("email", req.Email.Value)
	}
	s.args = append(s.args, id)

	cols := append(s.cols, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s", strings.Join(cols, ", "), len(s.args), userColumns)

	var u user.User
	err := r.observe(ctx, "users.update_profile", func(ctx context.Context) error {
		return scanUser(r.pool.QueryRow(ctx, query, s.args...), &u)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, mapUserConflict(err)
	}

	return u, nil
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(ctx, op, func(ctx context.Context) error {
		return scanUser(r.pool.QueryRow(ctx, query, arg), &u)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
}

// mapUserConflict turns a unique violation into the matching domain error.
// Registration pre-checks both fields, so reaching this means a concurrent
// insert won the race.
func mapUserConflict(err error) error {
	name, ok := uniqueConstraint(err)
	if !ok {
		return err
	}

	switch name {
	case constraintEmailUnique:
		return user.ErrEmailTaken
	default:
		return user.ErrUsernameTaken
	}
}
