// Package ids derives deterministic record identifiers. An identifier is a
// SHA-1 UUID over {owner, record kind, index} (or {source record, index}
// for redeem tickets), so clients can predict a record's address before it
// is created. Uniqueness of the underlying counters is what makes the
// derived addresses collision-free.
package ids

import (
	"fmt"

	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/google/uuid"
)

var namespace = uuid.MustParse("8f9a1e24-46db-4bb4-9c1e-7a3d05c6f2aa")

// Deposit returns the identifier of the deposit account created at the
// given per-kind index for owner.
func Deposit(owner string, kind models.DepositKind, index uint64) string {
	return derive("deposit/%s/%s/%d", owner, kind, index)
}

// ClaimTicket returns the identifier of the claim ticket paired with a
// deposit account. A deposit produces exactly one claim ticket, so the
// deposit identifier alone addresses it.
func ClaimTicket(depositID string) string {
	return derive("claim/%s", depositID)
}

// RedeemTicket returns the identifier of the redeem ticket created at the
// given redeem index of a deposit account.
func RedeemTicket(depositID string, redeemIndex uint64) string {
	return derive("redeem/%s/%d", depositID, redeemIndex)
}

func derive(format string, args ...any) string {
	return uuid.NewSHA1(namespace, fmt.Appendf(nil, format, args...)).String()
}
