package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/ids"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// BurnService burns gSRM against a deposit account and issues a redeem
// ticket for the corresponding release amount. Locked accounts release the
// full burned amount; vest accounts release only what the cliff-plus-linear
// schedule has unlocked. The source record self-destructs in the burn that
// exhausts it, while its outstanding redeem tickets keep maturing on their
// own delays.
type BurnService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       Clock
}

func NewBurnService(db *sql.DB, m repomanager.RepositoryManager, clock Clock) *BurnService {
	return &BurnService{db: db, repomanager: m, clock: clock}
}

// BurnLocked burns exactly amount of gSRM against a locked account.
// Rejects amounts that exceed the account's remaining balance.
func (s *BurnService) BurnLocked(ctx context.Context, owner, accountID string, amount uint64) (*models.RedeemTicket, error) {
	if amount == 0 {
		return nil, common.ErrInvalidGSRMAmount
	}
	now := s.clock.Now().Unix()

	var ticket *models.RedeemTicket
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		d, err := s.getOwned(ctx, tx, owner, accountID, models.KindLocked)
		if err != nil {
			return err
		}
		if d.IsMSRM && amount%common.MSRMMultiplier != 0 {
			return common.ErrInvalidMSRMAmount
		}
		requested, err := checkedAdd(d.GSRMBurned, amount)
		if err != nil {
			return err
		}
		if requested > d.TotalGSRMAmount {
			return common.ErrInvalidGSRMAmount
		}

		ticket, err = s.burn(ctx, tx, d, amount, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// BurnVest burns up to amount of gSRM against a vest account, clamped to
// what the vesting schedule currently allows. Requesting more than is
// vested is not an error: the caller receives the vested portion. A burn
// before the cliff fails, and a burn when nothing new has vested fails with
// common.ErrAlreadyRedeemed.
func (s *BurnService) BurnVest(ctx context.Context, owner, accountID string, amount uint64) (*models.RedeemTicket, error) {
	if amount == 0 {
		return nil, common.ErrInvalidGSRMAmount
	}
	now := s.clock.Now().Unix()

	var ticket *models.RedeemTicket
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		d, err := s.getOwned(ctx, tx, owner, accountID, models.KindVest)
		if err != nil {
			return err
		}
		if now < d.CliffEnd() {
			return common.ErrTooEarlyToVest
		}
		// Multiplier validation applies to the requested amount, before
		// clamping.
		if d.IsMSRM && amount%common.MSRMMultiplier != 0 {
			return common.ErrInvalidMSRMAmount
		}

		vested := vestedAmount(d.TotalGSRMAmount, now-d.CliffEnd(), d.LinearVestingPeriod)
		if vested <= d.GSRMBurned {
			return common.ErrAlreadyRedeemed
		}
		redeemable := vested - d.GSRMBurned
		if amount < redeemable {
			redeemable = amount
		}

		ticket, err = s.burn(ctx, tx, d, redeemable, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListAccounts returns the owner's open deposit accounts.
func (s *BurnService) ListAccounts(ctx context.Context, owner string) ([]*models.DepositAccount, error) {
	return s.repomanager.Deposits(s.db).ListByOwner(ctx, owner)
}

// burn performs the shared tail of both burn paths: debit the gSRM, advance
// gsrm_burned under the storage-level bound, close the account if
// exhausted (otherwise advance its redeem counter), and issue the redeem
// ticket.
func (s *BurnService) burn(ctx context.Context, tx dbx.DBTX, d *models.DepositAccount, burnAmount uint64, now int64) (*models.RedeemTicket, error) {
	cfg, err := s.repomanager.Config(tx).Get(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Tokens(tx).Burn(ctx, d.Owner, burnAmount); err != nil {
		return nil, err
	}

	depositsRepo := s.repomanager.Deposits(tx)
	updated, err := depositsRepo.AddBurned(ctx, d.ID, burnAmount)
	if err != nil {
		return nil, err
	}

	if updated.GSRMBurned == updated.TotalGSRMAmount {
		if err := depositsRepo.Close(ctx, d.ID); err != nil {
			return nil, err
		}
	} else {
		if err := depositsRepo.IncrementRedeemIndex(ctx, d.ID, d.RedeemIndex); err != nil {
			return nil, err
		}
	}

	releaseAmount := burnAmount
	if d.IsMSRM {
		releaseAmount = burnAmount / common.MSRMMultiplier
	}

	ticket := &models.RedeemTicket{
		ID:             ids.RedeemTicket(d.ID, d.RedeemIndex),
		Owner:          d.Owner,
		DepositAccount: d.ID,
		RedeemIndex:    d.RedeemIndex,
		IsMSRM:         d.IsMSRM,
		CreatedAt:      now,
		RedeemDelay:    cfg.RedeemDelay,
		Amount:         releaseAmount,
	}
	if err := s.repomanager.Tickets(tx).CreateRedeem(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.repomanager.Events(tx).Append(ctx, &models.AuditEvent{
		ID:        uuid.NewString(),
		Owner:     d.Owner,
		Action:    models.ActionBurn,
		Subject:   d.ID,
		Amount:    burnAmount,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *BurnService) getOwned(ctx context.Context, tx dbx.DBTX, owner, accountID string, kind models.DepositKind) (*models.DepositAccount, error) {
	d, err := s.repomanager.Deposits(tx).Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if d.Owner != owner {
		return nil, common.ErrorUnauthorized
	}
	if d.Kind != kind {
		return nil, common.ErrInvalidDepositKind
	}
	return d, nil
}
