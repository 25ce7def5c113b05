package models

// DepositKind tags a deposit account as immediate-redeem or linear-vesting.
type DepositKind string

const (
	KindLocked DepositKind = "locked"
	KindVest   DepositKind = "vest"
)

// DepositAccount is a custody deposit record. Locked accounts release the
// full burned amount immediately; vest accounts release along a
// cliff-plus-linear schedule and carry the Config periods snapshotted at
// creation (zero for locked accounts).
//
// Invariant: 0 <= GSRMBurned <= TotalGSRMAmount. The record exists in
// storage iff GSRMBurned < TotalGSRMAmount; it is closed in the same
// transaction as the burn that exhausts it.
type DepositAccount struct {
	ID          string
	Owner       string
	Kind        DepositKind
	Index       uint64
	RedeemIndex uint64
	IsMSRM      bool
	CreatedAt   int64

	CliffPeriod         int64
	LinearVestingPeriod int64

	TotalGSRMAmount uint64
	GSRMBurned      uint64
}

// CliffEnd returns the instant linear vesting starts.
func (d *DepositAccount) CliffEnd() int64 {
	return d.CreatedAt + d.CliffPeriod
}

// Remaining returns the unburned gSRM balance of the account.
func (d *DepositAccount) Remaining() uint64 {
	return d.TotalGSRMAmount - d.GSRMBurned
}
