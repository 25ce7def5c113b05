// Package tokenledger implements the token-service boundary: a balance
// ledger holding the custody vault and per-owner accounts for the
// underlying assets (SRM, MSRM) and the synthetic governance token (gSRM).
// Each primitive is atomic and fails as a unit on insufficient balance.
package tokenledger

import "context"

// Asset identifies a token denomination on the ledger.
type Asset string

const (
	AssetSRM  Asset = "SRM"
	AssetMSRM Asset = "MSRM"
	AssetGSRM Asset = "gSRM"
)

// VaultOwner is the ledger identity of the program-controlled custody vault.
const VaultOwner = "vault"

// Ledger is the token-service interface the engines operate against. A
// Postgres implementation bound to the operation's transaction gives the
// all-or-nothing semantics the core relies on.
type Ledger interface {
	// TransferIn moves amount of asset from the owner's account into the
	// custody vault. Fails with common.ErrInsufficientBalance.
	TransferIn(ctx context.Context, asset Asset, from string, amount uint64) error

	// TransferOut moves amount of asset from the custody vault to the
	// owner's account.
	TransferOut(ctx context.Context, asset Asset, to string, amount uint64) error

	// Mint credits freshly minted gSRM to the owner.
	Mint(ctx context.Context, to string, amount uint64) error

	// Burn debits gSRM from the owner's account. Fails with
	// common.ErrInsufficientBalance if the owner holds less than amount.
	Burn(ctx context.Context, from string, amount uint64) error

	// Credit adds amount of asset to an account. Administrative: used to
	// fund owner accounts in dev and test environments.
	Credit(ctx context.Context, owner string, asset Asset, amount uint64) error

	// Balances returns all non-zero balances of an owner.
	Balances(ctx context.Context, owner string) (map[Asset]uint64, error)
}
