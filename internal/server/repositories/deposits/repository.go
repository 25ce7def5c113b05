package deposits

import (
	"context"

	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

// Repository persists DepositAccount records (locked and vest).
type Repository interface {
	// Create stores a new deposit account. Returns
	// common.ErrorAlreadyExists on an (owner, kind, index) collision.
	Create(ctx context.Context, d *models.DepositAccount) error

	// Get returns the account, or common.ErrorNotFound (a fully burned
	// account no longer exists).
	Get(ctx context.Context, id string) (*models.DepositAccount, error)

	// ListByOwner returns the owner's open deposit accounts.
	ListByOwner(ctx context.Context, owner string) ([]*models.DepositAccount, error)

	// AddBurned increments gsrm_burned by amount, enforcing
	// gsrm_burned + amount <= total_gsrm_amount at the storage layer, and
	// returns the updated record. Returns common.ErrInvalidGSRMAmount when
	// the increment would exceed the total.
	AddBurned(ctx context.Context, id string, amount uint64) (*models.DepositAccount, error)

	// IncrementRedeemIndex advances the record's redeem counter from the
	// observed value.
	IncrementRedeemIndex(ctx context.Context, id string, from uint64) error

	// Close deletes a fully burned account. Returns common.ErrorNotFound
	// if the account does not exist or is not yet exhausted.
	Close(ctx context.Context, id string) error
}
