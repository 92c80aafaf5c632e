package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	promoDomain "github.com/Wanderway-Travel/service-promo/internal/domain/promo"
)

// memStore is an in-memory CodeStore with the same compare-and-swap semantics
// as the SQL adapter, for exercising the coordinator without a database.
type memStore struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*promoDomain.PromoCode
}

func newMemStore(codes ...*promoDomain.PromoCode) *memStore {
	s := &memStore{codes: map[uuid.UUID]*promoDomain.PromoCode{}}
	for _, c := range codes {
		s.codes[c.ID()] = c
	}
	return s
}

func clone(p *promoDomain.PromoCode) *promoDomain.PromoCode {
	return promoDomain.Reconstruct(
		p.ID(), p.Code(), p.Description(), p.DiscountKind(), p.DiscountValue(),
		p.MinOrder(), p.MaxDiscount(), p.ValidFrom(), p.ValidUntil(),
		p.UsageLimit(), p.UsedCount(), p.IsActive(), p.CreatedBy(),
		p.CreatedAt(), p.UpdatedAt(),
	)
}

func withUsedCount(p *promoDomain.PromoCode, usedCount int) *promoDomain.PromoCode {
	return promoDomain.Reconstruct(
		p.ID(), p.Code(), p.Description(), p.DiscountKind(), p.DiscountValue(),
		p.MinOrder(), p.MaxDiscount(), p.ValidFrom(), p.ValidUntil(),
		p.UsageLimit(), usedCount, p.IsActive(), p.CreatedBy(),
		p.CreatedAt(), time.Now().UTC(),
	)
}

func (s *memStore) FindByCode(_ context.Context, code string) (*promoDomain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	canonical := promoDomain.CanonicalCode(code)
	for _, c := range s.codes {
		if c.Code() == canonical {
			return clone(c), nil
		}
	}
	return nil, promoDomain.ErrNotFound
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*promoDomain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[id]
	if !ok {
		return nil, promoDomain.ErrNotFound
	}
	return clone(c), nil
}

func (s *memStore) FindEligible(_ context.Context, today time.Time) ([]*promoDomain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*promoDomain.PromoCode
	for _, c := range s.codes {
		if promoDomain.EligibilityReason(c, today) == promoDomain.ReasonNone {
			out = append(out, clone(c))
		}
	}
	return out, nil
}

func (s *memStore) List(_ context.Context, filter promoDomain.ListFilter) ([]*promoDomain.PromoCode, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*promoDomain.PromoCode
	for _, c := range s.codes {
		if filter.IsActive != nil && c.IsActive() != *filter.IsActive {
			continue
		}
		if filter.DiscountKind != "" && c.DiscountKind() != filter.DiscountKind {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(c.Code()), needle) &&
				!strings.Contains(strings.ToLower(c.Description()), needle) {
				continue
			}
		}
		matched = append(matched, clone(c))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().After(matched[j].CreatedAt())
		}
		return matched[i].Code() < matched[j].Code()
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *memStore) Save(_ context.Context, p *promoDomain.PromoCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[p.ID()] = clone(p)
	return nil
}

func (s *memStore) Update(_ context.Context, p *promoDomain.PromoCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.codes[p.ID()]
	if !ok {
		return promoDomain.ErrNotFound
	}
	// Same rule as the SQL adapter: edits never touch the counter.
	s.codes[p.ID()] = withUsedCount(p, existing.UsedCount())
	return nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[id]; !ok {
		return promoDomain.ErrNotFound
	}
	delete(s.codes, id)
	return nil
}

func (s *memStore) CompareAndIncrementUsedCount(_ context.Context, id uuid.UUID, expected int) (*promoDomain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[id]
	if !ok {
		return nil, promoDomain.ErrNotFound
	}
	if c.UsedCount() != expected {
		return nil, promoDomain.ErrConflict
	}
	if limit := c.UsageLimit(); limit != nil && c.UsedCount() >= *limit {
		return nil, promoDomain.ErrConflict
	}
	updated := withUsedCount(c, c.UsedCount()+1)
	s.codes[id] = updated
	return clone(updated), nil
}

func (s *memStore) CompareAndDecrementUsedCount(_ context.Context, id uuid.UUID, expected int) (*promoDomain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[id]
	if !ok {
		return nil, promoDomain.ErrNotFound
	}
	if c.UsedCount() != expected || c.UsedCount() == 0 {
		return nil, promoDomain.ErrConflict
	}
	updated := withUsedCount(c, c.UsedCount()-1)
	s.codes[id] = updated
	return clone(updated), nil
}

func (s *memStore) Stats(_ context.Context) (*promoDomain.UsageStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &promoDomain.UsageStats{}
	for _, c := range s.codes {
		stats.TotalCodes++
		if c.IsActive() {
			stats.ActiveCodes++
		}
		stats.TotalRedemptions += int64(c.UsedCount())
	}
	return stats, nil
}

// testCode builds an eligible percentage code with the given usage limit
// (0 = unbounded) and used count.
func testCode(codeString string, usageLimit, usedCount int) *promoDomain.PromoCode {
	now := time.Now().UTC()
	var limit *int
	if usageLimit > 0 {
		limit = &usageLimit
	}
	return promoDomain.Reconstruct(
		uuid.New(), promoDomain.CanonicalCode(codeString), "",
		promoDomain.DiscountPercentage, decimal.NewFromInt(10),
		nil, nil,
		now.AddDate(0, -1, 0), now.AddDate(0, 1, 0),
		limit, usedCount, true, uuid.New(), now, now,
	)
}
