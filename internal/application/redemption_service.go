package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	promoDomain "github.com/Wanderway-Travel/service-promo/internal/domain/promo"
)

// RedemptionReceipt proves that one usage slot was durably consumed.
type RedemptionReceipt struct {
	PromoCodeID   uuid.UUID `json:"promo_code_id"`
	Code          string    `json:"code"`
	NewUsedCount  int       `json:"new_used_count"`
	RemainingUses *int      `json:"remaining_uses,omitempty"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

// RedemptionService is the sole mutator of promo code usage counters. Safety
// comes from the store's conditional updates, which stay correct across
// replicas; the per-code mutex only spares the database redundant conflict
// round-trips when callers inside one process race on the same code.
type RedemptionService struct {
	store  promoDomain.CodeStore
	logger *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewRedemptionService creates a new RedemptionService.
func NewRedemptionService(store promoDomain.CodeStore, logger *zap.Logger) *RedemptionService {
	return &RedemptionService{
		store:  store,
		logger: logger,
		locks:  map[uuid.UUID]*sync.Mutex{},
	}
}

// codeLock returns the mutex serializing in-process work on one code.
// Entries are never evicted; live promo codes number in the dozens.
func (s *RedemptionService) codeLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Redeem consumes one usage slot of a promo code. State is always re-fetched
// here rather than trusted from an earlier validation call, and the increment
// only lands through the store's compare-and-increment, so the counter can
// never pass the usage limit no matter how many callers race. Business
// refusals come back as *promoDomain.RedemptionError; anything else is an
// infrastructure failure.
func (s *RedemptionService) Redeem(ctx context.Context, codeID uuid.UUID) (*RedemptionReceipt, error) {
	lock := s.codeLock(codeID)
	lock.Lock()
	defer lock.Unlock()

	code, err := s.store.FindByID(ctx, codeID)
	if err != nil {
		if errors.Is(err, promoDomain.ErrNotFound) {
			return nil, &promoDomain.RedemptionError{Reason: promoDomain.ReasonNotFound}
		}
		return nil, fmt.Errorf("redeem: fetch promo code: %w", err)
	}

	if reason := promoDomain.EligibilityReason(code, time.Now().UTC()); reason != promoDomain.ReasonNone {
		return nil, &promoDomain.RedemptionError{Reason: reason}
	}

	fresh, err := s.store.CompareAndIncrementUsedCount(ctx, codeID, code.UsedCount())
	if err != nil {
		if errors.Is(err, promoDomain.ErrConflict) {
			return nil, s.classifyRedeemConflict(ctx, codeID)
		}
		return nil, fmt.Errorf("redeem: increment used count: %w", err)
	}

	receipt := &RedemptionReceipt{
		PromoCodeID:   fresh.ID(),
		Code:          fresh.Code(),
		NewUsedCount:  fresh.UsedCount(),
		RemainingUses: fresh.RemainingUses(),
		RedeemedAt:    time.Now().UTC(),
	}
	s.logger.Info("promo code redeemed",
		zap.String("code", fresh.Code()),
		zap.Int("used_count", fresh.UsedCount()),
	)
	return receipt, nil
}

// classifyRedeemConflict distinguishes "the last slot is gone" from "another
// replica moved the counter but slots remain"; the latter is worth a retry by
// the caller, the former is not.
func (s *RedemptionService) classifyRedeemConflict(ctx context.Context, codeID uuid.UUID) error {
	code, err := s.store.FindByID(ctx, codeID)
	if err != nil {
		if errors.Is(err, promoDomain.ErrNotFound) {
			return &promoDomain.RedemptionError{Reason: promoDomain.ReasonNotFound}
		}
		return fmt.Errorf("redeem: refetch after conflict: %w", err)
	}
	if limit := code.UsageLimit(); limit != nil && code.UsedCount() >= *limit {
		return &promoDomain.RedemptionError{Reason: promoDomain.ReasonUsageLimitReached}
	}
	return &promoDomain.RedemptionError{Reason: promoDomain.ReasonConflict}
}

// Release returns one previously consumed usage slot, for bookings cancelled
// after redeeming a code. Releasing a code whose counter is already zero is a
// caller bug and is reported as such, never silently clamped.
func (s *RedemptionService) Release(ctx context.Context, codeID uuid.UUID) error {
	lock := s.codeLock(codeID)
	lock.Lock()
	defer lock.Unlock()

	code, err := s.store.FindByID(ctx, codeID)
	if err != nil {
		if errors.Is(err, promoDomain.ErrNotFound) {
			return &promoDomain.ReleaseError{Reason: promoDomain.ReasonNotFound}
		}
		return fmt.Errorf("release: fetch promo code: %w", err)
	}
	if code.UsedCount() == 0 {
		return &promoDomain.ReleaseError{Reason: promoDomain.ReasonUnderflow}
	}

	fresh, err := s.store.CompareAndDecrementUsedCount(ctx, codeID, code.UsedCount())
	if err != nil {
		if errors.Is(err, promoDomain.ErrConflict) {
			return s.classifyReleaseConflict(ctx, codeID)
		}
		return fmt.Errorf("release: decrement used count: %w", err)
	}

	s.logger.Info("promo code redemption released",
		zap.String("code", fresh.Code()),
		zap.Int("used_count", fresh.UsedCount()),
	)
	return nil
}

func (s *RedemptionService) classifyReleaseConflict(ctx context.Context, codeID uuid.UUID) error {
	code, err := s.store.FindByID(ctx, codeID)
	if err != nil {
		if errors.Is(err, promoDomain.ErrNotFound) {
			return &promoDomain.ReleaseError{Reason: promoDomain.ReasonNotFound}
		}
		return fmt.Errorf("release: refetch after conflict: %w", err)
	}
	if code.UsedCount() == 0 {
		return &promoDomain.ReleaseError{Reason: promoDomain.ReasonUnderflow}
	}
	return &promoDomain.ReleaseError{Reason: promoDomain.ReasonConflict}
}
