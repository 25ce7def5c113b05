package models

// AuditEvent is one row of the append-only operation journal. An event is
// written in the same transaction as the operation it records.
type AuditEvent struct {
	ID        string
	Owner     string
	Action    string
	Subject   string
	Amount    uint64
	CreatedAt int64
}

// Audit actions.
const (
	ActionDeposit = "deposit"
	ActionClaim   = "claim"
	ActionBurn    = "burn"
	ActionRedeem  = "redeem"
)
