package usage

import "errors"

// QuotaExceededMessage is shown to clients when a reservation is refused.
const QuotaExceededMessage = "Usage limit exceeded. Please upgrade your plan."

var (
	// ErrQuotaExceeded indicates the user has no analyses left on their plan.
	ErrQuotaExceeded = errors.New("usage limit exceeded")
	// ErrUnknownTier is returned by SetTier for tiers missing from the plan table.
	ErrUnknownTier = errors.New("unknown subscription tier")
	// ErrUserNotFound is returned by stores when the user row does not exist.
	ErrUserNotFound = errors.New("user not found")
)
