package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownContract  = errors.New("unknown contract")
	ErrContractExists   = errors.New("contract already exists")
	ErrAlreadyResolved  = errors.New("contract already resolved")
	ErrAlreadyCancelled = errors.New("contract already cancelled")
	ErrCancelled        = errors.New("contract cancelled")
	ErrClosed           = errors.New("contract closed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidOutcome   = errors.New(`contracts must be resolved to "true" or "false"`)
	ErrNotANumber       = errors.New("not a number")
	ErrOutOfRange       = errors.New("prediction out of range")
	ErrInvalidDateTime  = errors.New("could not understand date/time")
	ErrUsage            = errors.New("usage")
	ErrRateLimited      = errors.New("too many commands, slow down")
)

// userErrors are failures caused by what the user typed or by the state of
// a contract. They are reported back to the user rather than treated as
// server faults.
var userErrors = []error{
	ErrUnknownContract,
	ErrContractExists,
	ErrAlreadyResolved,
	ErrAlreadyCancelled,
	ErrCancelled,
	ErrClosed,
	ErrUnauthorized,
	ErrInvalidOutcome,
	ErrNotANumber,
	ErrOutOfRange,
	ErrInvalidDateTime,
	ErrUsage,
	ErrRateLimited,
}

// IsUserError reports whether err wraps one of the recoverable domain errors.
func IsUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
