package promo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reason classifies why a promo code is or is not usable. Every value other
// than ReasonNone is a normal business outcome, never an error condition.
type Reason string

const (
	ReasonNone              Reason = "none"
	ReasonNotFound          Reason = "not_found"
	ReasonInactive          Reason = "inactive"
	ReasonNotYetActive      Reason = "not_yet_active"
	ReasonExpired           Reason = "expired"
	ReasonUsageLimitReached Reason = "usage_limit_reached"
	ReasonMinimumNotMet     Reason = "minimum_not_met"
	ReasonConflict          Reason = "conflict"
	ReasonUnderflow         Reason = "underflow"
)

// Message returns the customer-facing description of a reason.
func (r Reason) Message() string {
	switch r {
	case ReasonNone:
		return "Promo code applied"
	case ReasonNotFound:
		return "Promo code not found"
	case ReasonInactive:
		return "This promo code is no longer available"
	case ReasonNotYetActive:
		return "This promo code is not active yet"
	case ReasonExpired:
		return "This promo code has expired"
	case ReasonUsageLimitReached:
		return "This promo code has reached its usage limit"
	case ReasonMinimumNotMet:
		return "The booking amount does not meet the minimum for this promo code"
	case ReasonConflict:
		return "Someone just used the last slot for this promo code"
	case ReasonUnderflow:
		return "This promo code has no redemptions to release"
	default:
		return "Promo code is not valid"
	}
}

// ValidationResult is the outcome of evaluating a promo code against an order
// amount. It is transient and never persisted.
type ValidationResult struct {
	Valid          bool
	Reason         Reason
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	RemainingUses  *int
}

// EligibilityReason runs the non-amount checks against a snapshot of the code
// in their fixed short-circuit order: active flag, date window, usage limit.
// It returns ReasonNone when the code is eligible. The redemption coordinator
// reuses this on fresh state before consuming a slot.
func EligibilityReason(code *PromoCode, today time.Time) Reason {
	if code == nil {
		return ReasonNotFound
	}
	today = DateOf(today)
	switch {
	case !code.isActive:
		return ReasonInactive
	case today.Before(code.validFrom):
		return ReasonNotYetActive
	case today.After(code.validUntil):
		return ReasonExpired
	case code.usageLimit != nil && code.usedCount >= *code.usageLimit:
		return ReasonUsageLimitReached
	default:
		return ReasonNone
	}
}

// Evaluate decides whether a promo code is valid for an order amount on a
// given day and computes the discount it would grant. It is pure: no state is
// read or written beyond the supplied snapshot, so callers may invoke it
// repeatedly for live price previews.
//
// Discount and final amounts are rounded to 2 decimal places, half up, once
// at the end of the computation.
func Evaluate(code *PromoCode, orderAmount decimal.Decimal, today time.Time) ValidationResult {
	if reason := EligibilityReason(code, today); reason != ReasonNone {
		return invalidResult(code, orderAmount, reason)
	}
	if code.minOrder != nil && orderAmount.LessThan(*code.minOrder) {
		return invalidResult(code, orderAmount, ReasonMinimumNotMet)
	}

	var raw decimal.Decimal
	switch code.discountKind {
	case DiscountPercentage:
		raw = orderAmount.Mul(code.discountValue).Div(oneHundred)
	case DiscountFixed:
		raw = code.discountValue
	}

	if code.maxDiscount != nil && raw.GreaterThan(*code.maxDiscount) {
		raw = *code.maxDiscount
	}
	if raw.GreaterThan(orderAmount) {
		raw = orderAmount
	}

	// The clamp re-applies after rounding: rounding half up can push the
	// discount past an order amount with more than two decimal places, and
	// the discount never exceeds the order, so final amounts cannot go
	// negative.
	discount := raw.Round(2)
	if discount.GreaterThan(orderAmount) {
		discount = orderAmount
	}
	return ValidationResult{
		Valid:          true,
		Reason:         ReasonNone,
		DiscountAmount: discount,
		FinalAmount:    orderAmount.Sub(discount),
		RemainingUses:  code.RemainingUses(),
	}
}

func invalidResult(code *PromoCode, orderAmount decimal.Decimal, reason Reason) ValidationResult {
	res := ValidationResult{
		Valid:          false,
		Reason:         reason,
		DiscountAmount: decimal.Zero,
		FinalAmount:    orderAmount,
	}
	if code != nil {
		res.RemainingUses = code.RemainingUses()
	}
	return res
}
