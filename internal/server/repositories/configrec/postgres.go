// Package configrec provides the PostgreSQL-backed repository for the
// singleton Config record.
package configrec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cfg *models.Config) error {
	query := `
		INSERT INTO config (id, config_authority, srm_mint, msrm_mint, claim_delay, redeem_delay, cliff_period, linear_vesting_period)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		cfg.ConfigAuthority, cfg.SRMMint, cfg.MSRMMint,
		cfg.ClaimDelay, cfg.RedeemDelay, cfg.CliffPeriod, cfg.LinearVestingPeriod)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context) (*models.Config, error) {
	query := `
		SELECT config_authority, srm_mint, msrm_mint, claim_delay, redeem_delay, cliff_period, linear_vesting_period
		FROM config WHERE id = 1
	`
	cfg := &models.Config{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&cfg.ConfigAuthority, &cfg.SRMMint, &cfg.MSRMMint,
		&cfg.ClaimDelay, &cfg.RedeemDelay, &cfg.CliffPeriod, &cfg.LinearVestingPeriod)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cfg, nil
}

func (r *PostgresRepository) UpdateParams(ctx context.Context, claimDelay, redeemDelay, cliffPeriod, linearVestingPeriod int64) error {
	query := `
		UPDATE config SET claim_delay = $1, redeem_delay = $2, cliff_period = $3, linear_vesting_period = $4
		WHERE id = 1
	`
	return r.execOne(ctx, query, claimDelay, redeemDelay, cliffPeriod, linearVestingPeriod)
}

func (r *PostgresRepository) UpdateAuthority(ctx context.Context, newAuthority string) error {
	query := `UPDATE config SET config_authority = $1 WHERE id = 1`
	return r.execOne(ctx, query, newAuthority)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
