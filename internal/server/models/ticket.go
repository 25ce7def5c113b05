package models

// ClaimTicket is a pending mint obligation created alongside a deposit.
// It authorizes exactly one mint of GSRMAmount once ClaimDelay has elapsed
// and is destroyed atomically with that mint.
type ClaimTicket struct {
	ID             string
	Owner          string
	DepositAccount string
	CreatedAt      int64
	ClaimDelay     int64
	GSRMAmount     uint64
}

// Claimable reports whether the ticket has matured at the given time.
func (t *ClaimTicket) Claimable(now int64) bool {
	return now >= t.CreatedAt+t.ClaimDelay
}

// RedeemTicket is a pending asset-release obligation created by a burn.
// DepositAccount is a back-reference only: the originating record may
// already be closed by the time the ticket matures. IsMSRM selects the
// payout asset.
type RedeemTicket struct {
	ID             string
	Owner          string
	DepositAccount string
	RedeemIndex    uint64
	IsMSRM         bool
	CreatedAt      int64
	RedeemDelay    int64
	Amount         uint64
}

// Redeemable reports whether the ticket has matured at the given time.
func (t *RedeemTicket) Redeemable(now int64) bool {
	return now >= t.CreatedAt+t.RedeemDelay
}
