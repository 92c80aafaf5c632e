package promo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows and pages an administrative promo code listing.
type ListFilter struct {
	Page         int
	Limit        int
	Search       string
	IsActive     *bool
	DiscountKind DiscountKind
}

// UsageStats aggregates counters for the admin dashboard.
type UsageStats struct {
	TotalCodes       int64 `json:"total_codes"`
	ActiveCodes      int64 `json:"active_codes"`
	TotalRedemptions int64 `json:"total_redemptions"`
}

// CodeStore defines persistence operations for promo codes.
//
// CompareAndIncrementUsedCount and CompareAndDecrementUsedCount are the
// optimistic-concurrency primitives behind redemption: each must be a single
// conditional update that only matches when the stored counter still equals
// expected and the move is legal (below the limit, or above zero). A matched
// update returns the fresh state; an unmatched one returns ErrConflict. That
// keeps the counter invariant intact across service replicas without any
// in-process locking.
type CodeStore interface {
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	FindEligible(ctx context.Context, today time.Time) ([]*PromoCode, error)
	List(ctx context.Context, filter ListFilter) ([]*PromoCode, int64, error)
	Save(ctx context.Context, p *PromoCode) error
	Update(ctx context.Context, p *PromoCode) error
	Delete(ctx context.Context, id uuid.UUID) error
	CompareAndIncrementUsedCount(ctx context.Context, id uuid.UUID, expected int) (*PromoCode, error)
	CompareAndDecrementUsedCount(ctx context.Context, id uuid.UUID, expected int) (*PromoCode, error)
	Stats(ctx context.Context) (*UsageStats, error)
}
