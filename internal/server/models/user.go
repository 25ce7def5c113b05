package models

import "time"

// User is the per-owner record. LockIndex and VestIndex are strictly
// increasing counters assigning unique indices to new deposits; an index is
// never reused, even after the addressed record is closed.
type User struct {
	Owner        string
	PasswordHash []byte
	LockIndex    uint64
	VestIndex    uint64
	CreatedAt    time.Time
}
