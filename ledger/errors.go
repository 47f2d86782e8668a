package ledger

import "errors"

// User-facing error taxonomy. All of these are local, non-retriable errors
// surfaced synchronously to the caller; a capped payout is a signal
// (RewardCapped event), never an error.
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidCycle   = errors.New("invalid cycle")
	ErrInvalidStake   = errors.New("invalid stake")
	ErrNotExpired     = errors.New("not expired")
	ErrAlreadyBound   = errors.New("already bound")
	ErrSelfReferral   = errors.New("self referral")
	ErrCyclicReferral = errors.New("cyclic referral")
	ErrDisabled       = errors.New("disabled")
	ErrUnknownUser    = errors.New("unknown user")
	ErrUnauthorized   = errors.New("unauthorized")

	ErrInsufficientBalance = errors.New("insufficient balance")
	// Kept for wire compatibility with the chain deployment's taxonomy.
	// The embedded ledger debits internal balances directly, so only
	// ErrInsufficientBalance is ever produced here; an external token
	// adapter maps its allowance failures to this error.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)
