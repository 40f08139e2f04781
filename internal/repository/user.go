package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	querier
}

const userColumns = `id, name, email, password`

// GetUserWithEmail returns the user registered under email, compared case
// insensitively, or nil when there is none.
func (r *UserRepository) GetUserWithEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetUserWithID returns the user with id, or nil when there is none.
func (r *UserRepository) GetUserWithID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) getUser(ctx context.Context, stmt string, arg any) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u models.User
	err := r.db.QueryRow(ctx, stmt, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	return &u, nil
}

// AddUser inserts a user and returns the stored row. The password must
// already be hashed. A duplicate email fails with USER_ALREADY_EXISTS.
func (r *UserRepository) AddUser(ctx context.Context, user models.NewUser) (models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	stmt := `INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	var u models.User
	err := r.db.QueryRow(ctx, stmt, user.Name, user.Email, user.PasswordHash).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if err != nil {
		return models.User{}, sqlerr.HandleError(err)
	}

	return u, nil
}
