package tokenledger

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
)

// PostgresLedger implements Ledger over a dbx.DBTX. The balance >= amount
// guard on the debiting UPDATE is what makes a transfer fail as a unit:
// zero rows affected means insufficient funds and nothing was moved.
type PostgresLedger struct {
	db dbx.DBTX
}

func NewPostgresLedger(db dbx.DBTX) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) TransferIn(ctx context.Context, asset Asset, from string, amount uint64) error {
	return l.transfer(ctx, asset, from, VaultOwner, amount)
}

func (l *PostgresLedger) TransferOut(ctx context.Context, asset Asset, to string, amount uint64) error {
	return l.transfer(ctx, asset, VaultOwner, to, amount)
}

func (l *PostgresLedger) Mint(ctx context.Context, to string, amount uint64) error {
	return l.credit(ctx, to, AssetGSRM, amount)
}

func (l *PostgresLedger) Burn(ctx context.Context, from string, amount uint64) error {
	return l.debit(ctx, from, AssetGSRM, amount)
}

func (l *PostgresLedger) Credit(ctx context.Context, owner string, asset Asset, amount uint64) error {
	return l.credit(ctx, owner, asset, amount)
}

func (l *PostgresLedger) Balances(ctx context.Context, owner string) (map[Asset]uint64, error) {
	query := `SELECT asset, balance FROM token_accounts WHERE owner = $1 AND balance > 0`
	rows, err := l.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := map[Asset]uint64{}
	for rows.Next() {
		var asset string
		var balance uint64
		if err := rows.Scan(&asset, &balance); err != nil {
			return nil, err
		}
		result[Asset(asset)] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (l *PostgresLedger) transfer(ctx context.Context, asset Asset, from, to string, amount uint64) error {
	if err := l.debit(ctx, from, asset, amount); err != nil {
		return err
	}
	return l.credit(ctx, to, asset, amount)
}

func (l *PostgresLedger) debit(ctx context.Context, owner string, asset Asset, amount uint64) error {
	query := `
		UPDATE token_accounts SET balance = balance - $3
		WHERE owner = $1 AND asset = $2 AND balance >= $3
	`
	res, err := l.db.ExecContext(ctx, query, owner, string(asset), amount)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrInsufficientBalance
	}
	return nil
}

func (l *PostgresLedger) credit(ctx context.Context, owner string, asset Asset, amount uint64) error {
	query := `
		INSERT INTO token_accounts (owner, asset, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner, asset)
		DO UPDATE SET balance = token_accounts.balance + EXCLUDED.balance
	`
	_, err := l.db.ExecContext(ctx, query, owner, string(asset), amount)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
