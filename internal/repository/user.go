package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/invoices/internal/model"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail returns ErrNotFound when no user has the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email, password FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect user: %w", err)
	}

	return &user, nil
}

// Create inserts a user. Password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user model.User) error {
	stmt := `
		INSERT INTO users (id, name, email, password)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.Exec(ctx, stmt, user.ID, user.Name, user.Email, user.Password); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}
