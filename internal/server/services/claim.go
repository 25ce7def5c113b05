package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ClaimService matures claim tickets into minted gSRM. The ticket is
// deleted in the same transaction as the mint, so a ticket can pay out at
// most once; a repeated claim observes common.ErrorNotFound.
type ClaimService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       Clock
}

func NewClaimService(db *sql.DB, m repomanager.RepositoryManager, clock Clock) *ClaimService {
	return &ClaimService{db: db, repomanager: m, clock: clock}
}

// Claim mints the ticket's recorded gSRM amount to the caller and consumes
// the ticket. The amount is never recomputed at claim time.
func (s *ClaimService) Claim(ctx context.Context, owner, ticketID string) (*models.ClaimTicket, error) {
	now := s.clock.Now().Unix()

	var ticket *models.ClaimTicket
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ticketsRepo := s.repomanager.Tickets(tx)

		t, err := ticketsRepo.GetClaim(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.Owner != owner {
			return common.ErrInvalidTicketOwner
		}
		if !t.Claimable(now) {
			return common.ErrTicketNotClaimable
		}

		if err := s.repomanager.Tokens(tx).Mint(ctx, owner, t.GSRMAmount); err != nil {
			return err
		}
		if err := ticketsRepo.DeleteClaim(ctx, t.ID); err != nil {
			return err
		}

		ticket = t
		return s.repomanager.Events(tx).Append(ctx, &models.AuditEvent{
			ID:        uuid.NewString(),
			Owner:     owner,
			Action:    models.ActionClaim,
			Subject:   t.ID,
			Amount:    t.GSRMAmount,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListTickets returns the owner's pending claim tickets.
func (s *ClaimService) ListTickets(ctx context.Context, owner string) ([]*models.ClaimTicket, error) {
	return s.repomanager.Tickets(s.db).ListClaimByOwner(ctx, owner)
}
