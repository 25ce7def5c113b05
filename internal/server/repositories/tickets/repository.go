package tickets

import (
	"context"

	"github.com/dmitrijs2005/govkeeper/internal/server/models"
)

// Repository persists the single-use claim and redeem tickets. Deleting a
// ticket in the same transaction as the mint/transfer it authorizes is what
// makes tickets single-use: a re-presented identifier is simply not found.
type Repository interface {
	CreateClaim(ctx context.Context, t *models.ClaimTicket) error
	GetClaim(ctx context.Context, id string) (*models.ClaimTicket, error)
	ListClaimByOwner(ctx context.Context, owner string) ([]*models.ClaimTicket, error)
	// DeleteClaim removes a ticket; common.ErrorNotFound if already consumed.
	DeleteClaim(ctx context.Context, id string) error

	CreateRedeem(ctx context.Context, t *models.RedeemTicket) error
	GetRedeem(ctx context.Context, id string) (*models.RedeemTicket, error)
	ListRedeemByOwner(ctx context.Context, owner string) ([]*models.RedeemTicket, error)
	// DeleteRedeem removes a ticket; common.ErrorNotFound if already consumed.
	DeleteRedeem(ctx context.Context, id string) error
}
