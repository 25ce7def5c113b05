// Package deposits provides the PostgreSQL-backed repository for deposit
// accounts. The burn-bound invariant (gsrm_burned never exceeds
// total_gsrm_amount) is enforced here with a guarded UPDATE, not only by
// service-level prechecks.
package deposits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

const columns = `id, owner, kind, idx, redeem_index, is_msrm, created_at, cliff_period, linear_vesting_period, total_gsrm_amount, gsrm_burned`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.DepositAccount) error {
	query := `
		INSERT INTO deposit_accounts (id, owner, kind, idx, redeem_index, is_msrm, created_at, cliff_period, linear_vesting_period, total_gsrm_amount, gsrm_burned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Owner, string(d.Kind), d.Index, d.RedeemIndex, d.IsMSRM, d.CreatedAt,
		d.CliffPeriod, d.LinearVestingPeriod, d.TotalGSRMAmount, d.GSRMBurned)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.DepositAccount, error) {
	query := `SELECT ` + columns + ` FROM deposit_accounts WHERE id = $1`
	d, err := scanDeposit(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*models.DepositAccount, error) {
	query := `SELECT ` + columns + ` FROM deposit_accounts WHERE owner = $1 ORDER BY created_at, idx`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.DepositAccount
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) AddBurned(ctx context.Context, id string, amount uint64) (*models.DepositAccount, error) {
	query := `
		UPDATE deposit_accounts SET gsrm_burned = gsrm_burned + $2
		WHERE id = $1 AND gsrm_burned + $2 <= total_gsrm_amount
		RETURNING ` + columns
	d, err := scanDeposit(r.db.QueryRowContext(ctx, query, id, amount))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrInvalidGSRMAmount
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) IncrementRedeemIndex(ctx context.Context, id string, from uint64) error {
	query := `
		UPDATE deposit_accounts SET redeem_index = redeem_index + 1
		WHERE id = $1 AND redeem_index = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, from)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) Close(ctx context.Context, id string) error {
	query := `
		DELETE FROM deposit_accounts
		WHERE id = $1 AND gsrm_burned = total_gsrm_amount
	`
	res, err := r.db.ExecContext(ctx, query, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeposit(row rowScanner) (*models.DepositAccount, error) {
	d := &models.DepositAccount{}
	var kind string
	err := row.Scan(&d.ID, &d.Owner, &kind, &d.Index, &d.RedeemIndex, &d.IsMSRM, &d.CreatedAt,
		&d.CliffPeriod, &d.LinearVestingPeriod, &d.TotalGSRMAmount, &d.GSRMBurned)
	if err != nil {
		return nil, err
	}
	d.Kind = models.DepositKind(kind)
	return d, nil
}
