package subscription

import "errors"

var (
	// ErrKeyInvalid covers absent and already redeemed keys alike, so a
	// caller cannot probe which keys exist.
	ErrKeyInvalid = errors.New("activation key is invalid or already used")
	// ErrPlanNotRedeemable rejects keys for plans without a duration.
	ErrPlanNotRedeemable = errors.New("plan cannot be activated by key")
	// ErrInvalidLimit rejects non-positive daily limits.
	ErrInvalidLimit = errors.New("daily limit must be at least 1")
	// ErrInvalidPrice rejects negative prices.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidCount rejects key batch sizes outside [1, 100].
	ErrInvalidCount = errors.New("key count must be between 1 and 100")
)
