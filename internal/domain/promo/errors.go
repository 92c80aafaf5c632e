package promo

import (
	"errors"
	"fmt"
)

// Store-level sentinels. Anything else coming out of a CodeStore is an
// infrastructure failure and must be kept distinct from the business taxonomy.
var (
	// ErrNotFound means no promo code matches the given code string or id.
	ErrNotFound = errors.New("promo code not found")

	// ErrConflict means a conditional counter update matched no rows because
	// another writer got there first.
	ErrConflict = errors.New("promo code usage counter changed concurrently")
)

// RedemptionError reports a redemption refused for a business reason.
type RedemptionError struct {
	Reason Reason
}

func (e *RedemptionError) Error() string {
	return fmt.Sprintf("redemption refused: %s", e.Reason)
}

// ReleaseError reports a release refused for a business reason.
type ReleaseError struct {
	Reason Reason
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release refused: %s", e.Reason)
}

// FailureReason extracts the business reason from a redeem/release error.
// It reports ok=false for infrastructure errors.
func FailureReason(err error) (Reason, bool) {
	var re *RedemptionError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	var le *ReleaseError
	if errors.As(err, &le) {
		return le.Reason, true
	}
	if errors.Is(err, ErrNotFound) {
		return ReasonNotFound, true
	}
	return "", false
}
