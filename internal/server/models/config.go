// Package models defines the persistent record types of the custody core:
// the singleton Config, per-owner User counters, deposit accounts, and the
// single-use claim/redeem tickets.
package models

// Config holds the process-wide tunable parameters. It is created once at
// initialization and mutated only by ConfigAuthority. Vest accounts snapshot
// CliffPeriod and LinearVestingPeriod at creation time, so later updates
// never alter in-flight vests.
//
// All delay/period fields are whole seconds and must be non-negative.
type Config struct {
	ConfigAuthority     string
	SRMMint             string
	MSRMMint            string
	ClaimDelay          int64
	RedeemDelay         int64
	CliffPeriod         int64
	LinearVestingPeriod int64
}
