// Package tickets provides the PostgreSQL-backed repository for claim and
// redeem tickets.
package tickets

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

func (r *PostgresRepository) CreateClaim(ctx context.Context, t *models.ClaimTicket) error {
	query := `
		INSERT INTO claim_tickets (id, owner, deposit_account, created_at, claim_delay, gsrm_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Owner, t.DepositAccount, t.CreatedAt, t.ClaimDelay, t.GSRMAmount)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetClaim(ctx context.Context, id string) (*models.ClaimTicket, error) {
	query := `
		SELECT id, owner, deposit_account, created_at, claim_delay, gsrm_amount FROM claim_tickets
		WHERE id = $1
	`
	t := &models.ClaimTicket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Owner, &t.DepositAccount, &t.CreatedAt, &t.ClaimDelay, &t.GSRMAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListClaimByOwner(ctx context.Context, owner string) ([]*models.ClaimTicket, error) {
	query := `
		SELECT id, owner, deposit_account, created_at, claim_delay, gsrm_amount FROM claim_tickets
		WHERE owner = $1 ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ClaimTicket
	for rows.Next() {
		t := &models.ClaimTicket{}
		if err := rows.Scan(&t.ID, &t.Owner, &t.DepositAccount, &t.CreatedAt, &t.ClaimDelay, &t.GSRMAmount); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteClaim(ctx context.Context, id string) error {
	return r.deleteOne(ctx, `DELETE FROM claim_tickets WHERE id = $1`, id)
}

func (r *PostgresRepository) CreateRedeem(ctx context.Context, t *models.RedeemTicket) error {
	query := `
		INSERT INTO redeem_tickets (id, owner, deposit_account, redeem_index, is_msrm, created_at, redeem_delay, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Owner, t.DepositAccount, t.RedeemIndex, t.IsMSRM, t.CreatedAt, t.RedeemDelay, t.Amount)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetRedeem(ctx context.Context, id string) (*models.RedeemTicket, error) {
	query := `
		SELECT id, owner, deposit_account, redeem_index, is_msrm, created_at, redeem_delay, amount FROM redeem_tickets
		WHERE id = $1
	`
	t := &models.RedeemTicket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Owner, &t.DepositAccount, &t.RedeemIndex, &t.IsMSRM, &t.CreatedAt, &t.RedeemDelay, &t.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListRedeemByOwner(ctx context.Context, owner string) ([]*models.RedeemTicket, error) {
	query := `
		SELECT id, owner, deposit_account, redeem_index, is_msrm, created_at, redeem_delay, amount FROM redeem_tickets
		WHERE owner = $1 ORDER BY created_at, redeem_index
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.RedeemTicket
	for rows.Next() {
		t := &models.RedeemTicket{}
		if err := rows.Scan(&t.ID, &t.Owner, &t.DepositAccount, &t.RedeemIndex, &t.IsMSRM, &t.CreatedAt, &t.RedeemDelay, &t.Amount); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteRedeem(ctx context.Context, id string) error {
	return r.deleteOne(ctx, `DELETE FROM redeem_tickets WHERE id = $1`, id)
}

func (r *PostgresRepository) deleteOne(ctx context.Context, query, id string) error {
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
