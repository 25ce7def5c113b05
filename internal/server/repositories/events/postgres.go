// Package events provides the PostgreSQL-backed repository for the audit
// journal. Events are appended in the same transaction as the operation
// they record and are never updated or deleted.
package events

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.AuditEvent) error {
	query := `
		INSERT INTO audit_events (id, owner, action, subject, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Owner, e.Action, e.Subject, e.Amount, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, owner, action, subject, amount, created_at FROM audit_events
		WHERE owner = $1 ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEvent
	for rows.Next() {
		e := &models.AuditEvent{}
		if err := rows.Scan(&e.ID, &e.Owner, &e.Action, &e.Subject, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
