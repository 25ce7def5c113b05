package services

import "time"

// Clock supplies the current time to time-gated operations. Injected so
// tests can drive maturity and vesting deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
