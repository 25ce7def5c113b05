package configrec

import (
	"context"

	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

// Repository persists the singleton Config record.
type Repository interface {
	// Create stores the initial Config. Returns common.ErrorAlreadyExists
	// if initialization already happened.
	Create(ctx context.Context, cfg *models.Config) error

	// Get returns the Config, or common.ErrorNotFound before Init.
	Get(ctx context.Context) (*models.Config, error)

	// UpdateParams replaces the four delay/period parameters.
	UpdateParams(ctx context.Context, claimDelay, redeemDelay, cliffPeriod, linearVestingPeriod int64) error

	// UpdateAuthority replaces the config authority.
	UpdateAuthority(ctx context.Context, newAuthority string) error
}
