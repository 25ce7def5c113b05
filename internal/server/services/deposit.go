package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/ids"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/govkeeper/internal/server/tokenledger"
	"github.com/google/uuid"
)

// DepositService creates locked/vest deposit accounts from incoming asset
// transfers, each paired with a claim ticket. One deposit is one
// transaction: the transfer into custody, the new record, the ticket and
// the counter increment commit together.
type DepositService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       Clock
}

func NewDepositService(db *sql.DB, m repomanager.RepositoryManager, clock Clock) *DepositService {
	return &DepositService{db: db, repomanager: m, clock: clock}
}

// DepositLocked deposits amount of the underlying asset into an
// immediate-redeem account.
func (s *DepositService) DepositLocked(ctx context.Context, owner string, amount uint64, isMSRM bool) (*models.DepositAccount, *models.ClaimTicket, error) {
	return s.deposit(ctx, owner, amount, isMSRM, models.KindLocked)
}

// DepositVest deposits amount of the underlying asset into a
// cliff-plus-linear vesting account, snapshotting the current Config
// periods.
func (s *DepositService) DepositVest(ctx context.Context, owner string, amount uint64, isMSRM bool) (*models.DepositAccount, *models.ClaimTicket, error) {
	return s.deposit(ctx, owner, amount, isMSRM, models.KindVest)
}

func (s *DepositService) deposit(ctx context.Context, owner string, amount uint64, isMSRM bool, kind models.DepositKind) (*models.DepositAccount, *models.ClaimTicket, error) {
	if amount == 0 {
		return nil, nil, common.ErrInvalidAmount
	}

	asset := tokenledger.AssetSRM
	gsrm := amount
	if isMSRM {
		asset = tokenledger.AssetMSRM
		var err error
		gsrm, err = checkedMul(amount, common.MSRMMultiplier)
		if err != nil {
			return nil, nil, err
		}
	}

	now := s.clock.Now().Unix()

	var deposit *models.DepositAccount
	var ticket *models.ClaimTicket

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cfg, err := s.repomanager.Config(tx).Get(ctx)
		if err != nil {
			return err
		}
		user, err := s.repomanager.Users(tx).Get(ctx, owner)
		if err != nil {
			return err
		}

		if err := s.repomanager.Tokens(tx).TransferIn(ctx, asset, owner, amount); err != nil {
			return err
		}

		index := user.LockIndex
		if kind == models.KindVest {
			index = user.VestIndex
		}

		deposit = &models.DepositAccount{
			ID:              ids.Deposit(owner, kind, index),
			Owner:           owner,
			Kind:            kind,
			Index:           index,
			IsMSRM:          isMSRM,
			CreatedAt:       now,
			TotalGSRMAmount: gsrm,
		}
		if kind == models.KindVest {
			deposit.CliffPeriod = cfg.CliffPeriod
			deposit.LinearVestingPeriod = cfg.LinearVestingPeriod
		}
		if err := s.repomanager.Deposits(tx).Create(ctx, deposit); err != nil {
			return err
		}

		ticket = &models.ClaimTicket{
			ID:             ids.ClaimTicket(deposit.ID),
			Owner:          owner,
			DepositAccount: deposit.ID,
			CreatedAt:      now,
			ClaimDelay:     cfg.ClaimDelay,
			GSRMAmount:     gsrm,
		}
		if err := s.repomanager.Tickets(tx).CreateClaim(ctx, ticket); err != nil {
			return err
		}

		usersRepo := s.repomanager.Users(tx)
		if kind == models.KindVest {
			err = usersRepo.IncrementVestIndex(ctx, owner, index)
		} else {
			err = usersRepo.IncrementLockIndex(ctx, owner, index)
		}
		if err != nil {
			return err
		}

		return s.repomanager.Events(tx).Append(ctx, &models.AuditEvent{
			ID:        uuid.NewString(),
			Owner:     owner,
			Action:    models.ActionDeposit,
			Subject:   deposit.ID,
			Amount:    gsrm,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return deposit, ticket, nil
}
