package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/govkeeper/internal/server/tokenledger"
	"github.com/google/uuid"
)

// RedeemService matures redeem tickets into asset payouts from custody. The
// payout asset and amount were fixed when the ticket was created; a ticket
// outlives its source account and pays out at most once.
type RedeemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       Clock
}

func NewRedeemService(db *sql.DB, m repomanager.RepositoryManager, clock Clock) *RedeemService {
	return &RedeemService{db: db, repomanager: m, clock: clock}
}

// Redeem pays the ticket's recorded asset amount out of custody to the
// caller and consumes the ticket.
func (s *RedeemService) Redeem(ctx context.Context, owner, ticketID string) (*models.RedeemTicket, error) {
	now := s.clock.Now().Unix()

	var ticket *models.RedeemTicket
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ticketsRepo := s.repomanager.Tickets(tx)

		t, err := ticketsRepo.GetRedeem(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.Owner != owner {
			return common.ErrInvalidTicketOwner
		}
		if !t.Redeemable(now) {
			return common.ErrTicketNotClaimable
		}
		if t.Amount == 0 {
			return common.ErrInvalidRedeemTicket
		}

		asset := tokenledger.AssetSRM
		if t.IsMSRM {
			asset = tokenledger.AssetMSRM
		}
		if err := s.repomanager.Tokens(tx).TransferOut(ctx, asset, owner, t.Amount); err != nil {
			return err
		}
		if err := ticketsRepo.DeleteRedeem(ctx, t.ID); err != nil {
			return err
		}

		ticket = t
		return s.repomanager.Events(tx).Append(ctx, &models.AuditEvent{
			ID:        uuid.NewString(),
			Owner:     owner,
			Action:    models.ActionRedeem,
			Subject:   t.ID,
			Amount:    t.Amount,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTickets returns the owner's pending redeem tickets.
func (s *RedeemService) ListTickets(ctx context.Context, owner string) ([]*models.RedeemTicket, error) {
	return s.repomanager.Tickets(s.db).ListRedeemByOwner(ctx, owner)
}
