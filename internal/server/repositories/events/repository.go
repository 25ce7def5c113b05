package events

import (
	"context"

	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

// Repository persists the append-only audit journal.
type Repository interface {
	Append(ctx context.Context, e *models.AuditEvent) error
	ListByOwner(ctx context.Context, owner string) ([]*models.AuditEvent, error)
}
