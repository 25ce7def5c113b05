// Package common defines shared constants and sentinel errors used across
// govkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Amount validation errors. Rejected before any mutation.
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidGSRMAmount = errors.New("invalid amount for burning gSRM")
	ErrInvalidMSRMAmount = errors.New("invalid amount for redeeming MSRM")

	// Kind mismatch: a locked operation aimed at a vest account or vice versa.
	ErrInvalidDepositKind = errors.New("operation does not match deposit kind")

	// Timing errors. Recoverable: the caller retries after the delay elapses.
	ErrTicketNotClaimable = errors.New("ticket is not currently claimable")
	ErrTooEarlyToVest     = errors.New("too early to vest")

	// Ownership / consumed-state errors.
	ErrInvalidTicketOwner  = errors.New("invalid owner for ticket")
	ErrInvalidRedeemTicket = errors.New("invalid redeem ticket")
	ErrAlreadyRedeemed     = errors.New("already redeemed")

	// Ledger errors.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Checked-arithmetic failure.
	ErrOverflow = errors.New("arithmetic overflow")
)
