// Package users provides the PostgreSQL-backed repository for per-owner
// User records with their monotonic deposit counters.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (owner, password_hash)
		VALUES ($1, $2)
	`
	_, err := r.db.ExecContext(ctx, query, user.Owner, user.PasswordHash)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, owner string) (*models.User, error) {
	query := `
		SELECT owner, password_hash, lock_index, vest_index, created_at FROM users
		WHERE owner = $1
	`
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, owner).Scan(
		&user.Owner, &user.PasswordHash, &user.LockIndex, &user.VestIndex, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) IncrementLockIndex(ctx context.Context, owner string, from uint64) error {
	query := `
		UPDATE users SET lock_index = lock_index + 1
		WHERE owner = $1 AND lock_index = $2
	`
	return r.incrementIndex(ctx, query, owner, from)
}

func (r *PostgresRepository) IncrementVestIndex(ctx context.Context, owner string, from uint64) error {
	query := `
		UPDATE users SET vest_index = vest_index + 1
		WHERE owner = $1 AND vest_index = $2
	`
	return r.incrementIndex(ctx, query, owner, from)
}

func (r *PostgresRepository) incrementIndex(ctx context.Context, query, owner string, from uint64) error {
	res, err := r.db.ExecContext(ctx, query, owner, from)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		// Counter moved underneath us: a concurrent deposit won this index.
		return common.ErrorAlreadyExists
	}
	return nil
}
