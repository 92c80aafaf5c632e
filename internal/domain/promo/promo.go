package promo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountKind represents how a promo code's discount value is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

var oneHundred = decimal.NewFromInt(100)

// PromoCode is the aggregate root for promotional discount codes.
// used_count is never mutated through this type directly; the redemption
// coordinator owns it via the store's conditional increment/decrement.
type PromoCode struct {
	id            uuid.UUID
	code          string
	description   string
	discountKind  DiscountKind
	discountValue decimal.Decimal
	minOrder      *decimal.Decimal
	maxDiscount   *decimal.Decimal
	validFrom     time.Time
	validUntil    time.Time
	usageLimit    *int
	usedCount     int
	isActive      bool
	createdBy     uuid.UUID
	createdAt     time.Time
	updatedAt     time.Time
}

// CanonicalCode normalizes a human-entered code to its case-insensitive
// identity: trimmed and uppercased.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewPromoCode creates a new promo code with used_count = 0.
func NewPromoCode(
	code, description string,
	kind DiscountKind,
	value decimal.Decimal,
	minOrder, maxDiscount *decimal.Decimal,
	validFrom, validUntil time.Time,
	usageLimit *int,
	createdBy uuid.UUID,
) (*PromoCode, error) {
	code = CanonicalCode(code)
	if code == "" {
		return nil, fmt.Errorf("promo code is required")
	}
	if kind != DiscountPercentage && kind != DiscountFixed {
		return nil, fmt.Errorf("invalid discount kind: %s", kind)
	}
	if !value.IsPositive() {
		return nil, fmt.Errorf("discount value must be positive")
	}
	if kind == DiscountPercentage && value.GreaterThan(oneHundred) {
		return nil, fmt.Errorf("percentage discount cannot exceed 100")
	}
	if minOrder != nil && minOrder.IsNegative() {
		return nil, fmt.Errorf("minimum order amount cannot be negative")
	}
	if maxDiscount != nil && !maxDiscount.IsPositive() {
		return nil, fmt.Errorf("maximum discount amount must be positive")
	}
	validFrom = DateOf(validFrom)
	validUntil = DateOf(validUntil)
	if validUntil.Before(validFrom) {
		return nil, fmt.Errorf("valid_until must not precede valid_from")
	}
	if usageLimit != nil && *usageLimit <= 0 {
		return nil, fmt.Errorf("usage limit must be positive when set")
	}

	now := time.Now().UTC()
	return &PromoCode{
		id:            uuid.New(),
		code:          code,
		description:   description,
		discountKind:  kind,
		discountValue: value,
		minOrder:      minOrder,
		maxDiscount:   maxDiscount,
		validFrom:     validFrom,
		validUntil:    validUntil,
		usageLimit:    usageLimit,
		usedCount:     0,
		isActive:      true,
		createdBy:     createdBy,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a PromoCode from persistence.
func Reconstruct(
	id uuid.UUID,
	code, description string,
	kind DiscountKind,
	value decimal.Decimal,
	minOrder, maxDiscount *decimal.Decimal,
	validFrom, validUntil time.Time,
	usageLimit *int,
	usedCount int,
	isActive bool,
	createdBy uuid.UUID,
	createdAt, updatedAt time.Time,
) *PromoCode {
	return &PromoCode{
		id: id, code: code, description: description,
		discountKind: kind, discountValue: value,
		minOrder: minOrder, maxDiscount: maxDiscount,
		validFrom: DateOf(validFrom), validUntil: DateOf(validUntil),
		usageLimit: usageLimit, usedCount: usedCount, isActive: isActive,
		createdBy: createdBy, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Amendment carries administrative edits. Nil fields are left untouched.
// used_count is deliberately absent: it is owned by the redemption coordinator.
type Amendment struct {
	Description      *string
	DiscountKind     *DiscountKind
	DiscountValue    *decimal.Decimal
	MinOrder         *decimal.Decimal
	ClearMinOrder    bool
	MaxDiscount      *decimal.Decimal
	ClearMaxDiscount bool
	ValidFrom        *time.Time
	ValidUntil       *time.Time
	UsageLimit       *int
	ClearUsageLimit  bool
	IsActive         *bool
}

// Amend applies an administrative edit, re-running the same validation rules
// as creation.
func (p *PromoCode) Amend(a Amendment) error {
	kind := p.discountKind
	if a.DiscountKind != nil {
		kind = *a.DiscountKind
	}
	if kind != DiscountPercentage && kind != DiscountFixed {
		return fmt.Errorf("invalid discount kind: %s", kind)
	}

	value := p.discountValue
	if a.DiscountValue != nil {
		value = *a.DiscountValue
	}
	if !value.IsPositive() {
		return fmt.Errorf("discount value must be positive")
	}
	if kind == DiscountPercentage && value.GreaterThan(oneHundred) {
		return fmt.Errorf("percentage discount cannot exceed 100")
	}

	from, until := p.validFrom, p.validUntil
	if a.ValidFrom != nil {
		from = DateOf(*a.ValidFrom)
	}
	if a.ValidUntil != nil {
		until = DateOf(*a.ValidUntil)
	}
	if until.Before(from) {
		return fmt.Errorf("valid_until must not precede valid_from")
	}

	limit := p.usageLimit
	if a.ClearUsageLimit {
		limit = nil
	} else if a.UsageLimit != nil {
		limit = a.UsageLimit
	}
	if limit != nil && *limit <= 0 {
		return fmt.Errorf("usage limit must be positive when set")
	}

	minOrder := p.minOrder
	if a.ClearMinOrder {
		minOrder = nil
	} else if a.MinOrder != nil {
		if a.MinOrder.IsNegative() {
			return fmt.Errorf("minimum order amount cannot be negative")
		}
		minOrder = a.MinOrder
	}

	maxDiscount := p.maxDiscount
	if a.ClearMaxDiscount {
		maxDiscount = nil
	} else if a.MaxDiscount != nil {
		if !a.MaxDiscount.IsPositive() {
			return fmt.Errorf("maximum discount amount must be positive")
		}
		maxDiscount = a.MaxDiscount
	}

	p.discountKind = kind
	p.discountValue = value
	p.validFrom = from
	p.validUntil = until
	p.usageLimit = limit
	p.minOrder = minOrder
	p.maxDiscount = maxDiscount
	if a.Description != nil {
		p.description = *a.Description
	}
	if a.IsActive != nil {
		p.isActive = *a.IsActive
	}
	p.updatedAt = time.Now().UTC()
	return nil
}

// RemainingUses returns the number of unredeemed slots, or nil when usage
// is unbounded.
func (p *PromoCode) RemainingUses() *int {
	if p.usageLimit == nil {
		return nil
	}
	r := *p.usageLimit - p.usedCount
	if r < 0 {
		r = 0
	}
	return &r
}

// Getters.
func (p *PromoCode) ID() uuid.UUID                  { return p.id }
func (p *PromoCode) Code() string                   { return p.code }
func (p *PromoCode) Description() string            { return p.description }
func (p *PromoCode) DiscountKind() DiscountKind     { return p.discountKind }
func (p *PromoCode) DiscountValue() decimal.Decimal { return p.discountValue }
func (p *PromoCode) MinOrder() *decimal.Decimal     { return p.minOrder }
func (p *PromoCode) MaxDiscount() *decimal.Decimal  { return p.maxDiscount }
func (p *PromoCode) ValidFrom() time.Time           { return p.validFrom }
func (p *PromoCode) ValidUntil() time.Time          { return p.validUntil }
func (p *PromoCode) UsageLimit() *int               { return p.usageLimit }
func (p *PromoCode) UsedCount() int                 { return p.usedCount }
func (p *PromoCode) IsActive() bool                 { return p.isActive }
func (p *PromoCode) CreatedBy() uuid.UUID           { return p.createdBy }
func (p *PromoCode) CreatedAt() time.Time           { return p.createdAt }
func (p *PromoCode) UpdatedAt() time.Time           { return p.updatedAt }

// DateOf truncates a timestamp to its UTC calendar date. Validity windows are
// date-granular and inclusive on both ends.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
