package users

import (
	"context"

	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

// Repository persists per-owner User records and their deposit counters.
type Repository interface {
	// Create stores a new user. Returns common.ErrorAlreadyExists if the
	// owner is already registered.
	Create(ctx context.Context, user *models.User) error

	// Get returns the user record, or common.ErrorNotFound.
	Get(ctx context.Context, owner string) (*models.User, error)

	// IncrementLockIndex advances the lock counter from the observed value.
	// Returns common.ErrorAlreadyExists if a concurrent deposit advanced it
	// first: the compare-and-set on the previous value is what serializes
	// same-index creation attempts.
	IncrementLockIndex(ctx context.Context, owner string, from uint64) error

	// IncrementVestIndex is the vest-counter counterpart of
	// IncrementLockIndex.
	IncrementVestIndex(ctx context.Context, owner string, from uint64) error
}
