// Package services contains the server-side engines of the custody core:
// config administration, user registration/login, and the deposit, claim,
// burn and redeem engines. Every engine operation runs inside a single
// database transaction via dbx.WithTx, so all record mutations and token
// movements of one operation commit or roll back together.
package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/govkeeper/internal/server/tokenledger"
)

// ConfigService administers the singleton Config record and the
// authority-gated treasury operations.
type ConfigService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewConfigService(db *sql.DB, m repomanager.RepositoryManager) *ConfigService {
	return &ConfigService{db: db, repomanager: m}
}

// Init creates the Config record. It can succeed at most once; later calls
// observe common.ErrorAlreadyExists.
func (s *ConfigService) Init(ctx context.Context, cfg *models.Config) error {
	if cfg.ConfigAuthority == "" {
		return common.ErrorUnauthorized
	}
	if err := validatePeriods(cfg.ClaimDelay, cfg.RedeemDelay, cfg.CliffPeriod, cfg.LinearVestingPeriod); err != nil {
		return err
	}
	return s.repomanager.Config(s.db).Create(ctx, cfg)
}

// Get returns the current Config.
func (s *ConfigService) Get(ctx context.Context) (*models.Config, error) {
	return s.repomanager.Config(s.db).Get(ctx)
}

// UpdateParams replaces the delay/period parameters. Only the config
// authority may call it. In-flight vest accounts are unaffected: they carry
// their own snapshots.
func (s *ConfigService) UpdateParams(ctx context.Context, caller string, claimDelay, redeemDelay, cliffPeriod, linearVestingPeriod int64) error {
	if err := validatePeriods(claimDelay, redeemDelay, cliffPeriod, linearVestingPeriod); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Config(tx)
		if err := s.requireAuthority(ctx, tx, caller); err != nil {
			return err
		}
		return repo.UpdateParams(ctx, claimDelay, redeemDelay, cliffPeriod, linearVestingPeriod)
	})
}

// UpdateAuthority hands the config authority to a new identity.
func (s *ConfigService) UpdateAuthority(ctx context.Context, caller, newAuthority string) error {
	if newAuthority == "" {
		return common.ErrorUnauthorized
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.requireAuthority(ctx, tx, caller); err != nil {
			return err
		}
		return s.repomanager.Config(tx).UpdateAuthority(ctx, newAuthority)
	})
}

// FundAccount credits an owner's ledger account. Authority-gated; intended
// for dev/test environments where no external token bridge exists.
func (s *ConfigService) FundAccount(ctx context.Context, caller, owner string, asset tokenledger.Asset, amount uint64) error {
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.requireAuthority(ctx, tx, caller); err != nil {
			return err
		}
		return s.repomanager.Tokens(tx).Credit(ctx, owner, asset, amount)
	})
}

func (s *ConfigService) requireAuthority(ctx context.Context, tx dbx.DBTX, caller string) error {
	cfg, err := s.repomanager.Config(tx).Get(ctx)
	if err != nil {
		return err
	}
	if caller == "" || caller != cfg.ConfigAuthority {
		return common.ErrorUnauthorized
	}
	return nil
}

func validatePeriods(periods ...int64) error {
	for _, p := range periods {
		if p < 0 {
			return common.ErrInvalidAmount
		}
	}
	return nil
}
