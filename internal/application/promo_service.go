package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	promoDomain "github.com/Wanderway-Travel/service-promo/internal/domain/promo"
)

// ErrInvalidInput marks request-level validation failures so the HTTP layer
// can answer 400 instead of 500.
var ErrInvalidInput = errors.New("invalid input")

const dateLayout = "2006-01-02"

// CreatePromoRequest holds data to create a promo code.
type CreatePromoRequest struct {
	Code          string  `json:"code" binding:"required"`
	Description   string  `json:"description"`
	DiscountKind  string  `json:"discount_kind" binding:"required"`
	DiscountValue string  `json:"discount_value" binding:"required"`
	MinOrder      *string `json:"minimum_order_amount"`
	MaxDiscount   *string `json:"maximum_discount_amount"`
	ValidFrom     string  `json:"valid_from" binding:"required"`
	ValidUntil    string  `json:"valid_until" binding:"required"`
	UsageLimit    *int    `json:"usage_limit"`
}

// UpdatePromoRequest holds administrative edits. Absent fields are untouched;
// explicit nulls clear the optional limits.
type UpdatePromoRequest struct {
	Description   *string `json:"description"`
	DiscountKind  *string `json:"discount_kind"`
	DiscountValue *string `json:"discount_value"`
	MinOrder      *string `json:"minimum_order_amount"`
	ClearMinOrder bool    `json:"clear_minimum_order_amount"`
	MaxDiscount   *string `json:"maximum_discount_amount"`
	ClearMaxDiscount bool `json:"clear_maximum_discount_amount"`
	ValidFrom     *string `json:"valid_from"`
	ValidUntil    *string `json:"valid_until"`
	UsageLimit    *int    `json:"usage_limit"`
	ClearUsageLimit bool  `json:"clear_usage_limit"`
	IsActive      *bool   `json:"is_active"`
}

// ValidatePromoRequest asks whether a code is usable for a booking amount.
// Either the code string or the promo code id must be supplied.
type ValidatePromoRequest struct {
	Code          string `json:"code"`
	PromoCodeID   string `json:"promo_code_id"`
	BookingAmount string `json:"booking_amount" binding:"required"`
}

// ListPromosQuery mirrors the admin listing filters.
type ListPromosQuery struct {
	Page         int
	Limit        int
	Search       string
	IsActive     *bool
	DiscountKind string
}

// PromoDTO is the API representation of a promo code.
type PromoDTO struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Description   string          `json:"description,omitempty"`
	DiscountKind  string          `json:"discount_kind"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinOrder      *decimal.Decimal `json:"minimum_order_amount,omitempty"`
	MaxDiscount   *decimal.Decimal `json:"maximum_discount_amount,omitempty"`
	ValidFrom     string          `json:"valid_from"`
	ValidUntil    string          `json:"valid_until"`
	UsageLimit    *int            `json:"usage_limit,omitempty"`
	UsedCount     int             `json:"used_count"`
	RemainingUses *int            `json:"remaining_uses,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ValidationDTO is the result of validating a promo code against an amount.
type ValidationDTO struct {
	Valid          bool            `json:"is_valid"`
	Reason         string          `json:"reason"`
	Message        string          `json:"message"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	RemainingUses  *int            `json:"remaining_uses,omitempty"`
	PromoCodeID    *uuid.UUID      `json:"promo_code_id,omitempty"`
}

// PromoService handles promo code administration and validation use cases.
// The store is injected; the service holds no state of its own.
type PromoService struct {
	store  promoDomain.CodeStore
	logger *zap.Logger
}

// NewPromoService creates a new PromoService.
func NewPromoService(store promoDomain.CodeStore, logger *zap.Logger) *PromoService {
	return &PromoService{store: store, logger: logger}
}

// CreatePromo creates a new promo code (admin only).
func (s *PromoService) CreatePromo(ctx context.Context, createdBy uuid.UUID, req CreatePromoRequest) (*PromoDTO, error) {
	value, err := parseAmount(req.DiscountValue, "discount_value")
	if err != nil {
		return nil, err
	}
	minOrder, err := parseOptionalAmount(req.MinOrder, "minimum_order_amount")
	if err != nil {
		return nil, err
	}
	maxDiscount, err := parseOptionalAmount(req.MaxDiscount, "maximum_discount_amount")
	if err != nil {
		return nil, err
	}
	validFrom, err := parseDate(req.ValidFrom, "valid_from")
	if err != nil {
		return nil, err
	}
	validUntil, err := parseDate(req.ValidUntil, "valid_until")
	if err != nil {
		return nil, err
	}

	code, err := promoDomain.NewPromoCode(
		req.Code, req.Description,
		promoDomain.DiscountKind(req.DiscountKind),
		value, minOrder, maxDiscount,
		validFrom, validUntil,
		req.UsageLimit, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.store.Save(ctx, code); err != nil {
		return nil, fmt.Errorf("create promo code: %w", err)
	}

	s.logger.Info("promo code created",
		zap.String("code", code.Code()),
		zap.String("id", code.ID().String()),
	)
	return toPromoDTO(code), nil
}

// UpdatePromo applies administrative edits to a promo code. used_count cannot
// be changed through this path.
func (s *PromoService) UpdatePromo(ctx context.Context, id uuid.UUID, req UpdatePromoRequest) (*PromoDTO, error) {
	code, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	amendment := promoDomain.Amendment{
		Description:      req.Description,
		ClearMinOrder:    req.ClearMinOrder,
		ClearMaxDiscount: req.ClearMaxDiscount,
		UsageLimit:       req.UsageLimit,
		ClearUsageLimit:  req.ClearUsageLimit,
		IsActive:         req.IsActive,
	}
	if req.DiscountKind != nil {
		kind := promoDomain.DiscountKind(*req.DiscountKind)
		amendment.DiscountKind = &kind
	}
	if req.DiscountValue != nil {
		v, err := parseAmount(*req.DiscountValue, "discount_value")
		if err != nil {
			return nil, err
		}
		amendment.DiscountValue = &v
	}
	if req.MinOrder != nil {
		v, err := parseAmount(*req.MinOrder, "minimum_order_amount")
		if err != nil {
			return nil, err
		}
		amendment.MinOrder = &v
	}
	if req.MaxDiscount != nil {
		v, err := parseAmount(*req.MaxDiscount, "maximum_discount_amount")
		if err != nil {
			return nil, err
		}
		amendment.MaxDiscount = &v
	}
	if req.ValidFrom != nil {
		d, err := parseDate(*req.ValidFrom, "valid_from")
		if err != nil {
			return nil, err
		}
		amendment.ValidFrom = &d
	}
	if req.ValidUntil != nil {
		d, err := parseDate(*req.ValidUntil, "valid_until")
		if err != nil {
			return nil, err
		}
		amendment.ValidUntil = &d
	}

	if err := code.Amend(amendment); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := s.store.Update(ctx, code); err != nil {
		return nil, fmt.Errorf("update promo code: %w", err)
	}

	s.logger.Info("promo code updated", zap.String("id", id.String()))
	return toPromoDTO(code), nil
}

// DeletePromo removes a promo code.
func (s *PromoService) DeletePromo(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("promo code deleted", zap.String("id", id.String()))
	return nil
}

// GetPromo returns a single promo code by id.
func (s *PromoService) GetPromo(ctx context.Context, id uuid.UUID) (*PromoDTO, error) {
	code, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPromoDTO(code), nil
}

// ListPromos returns a filtered, paginated admin listing.
func (s *PromoService) ListPromos(ctx context.Context, q ListPromosQuery) ([]*PromoDTO, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	codes, total, err := s.store.List(ctx, promoDomain.ListFilter{
		Page:         q.Page,
		Limit:        q.Limit,
		Search:       q.Search,
		IsActive:     q.IsActive,
		DiscountKind: promoDomain.DiscountKind(q.DiscountKind),
	})
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*PromoDTO, len(codes))
	for i, c := range codes {
		dtos[i] = toPromoDTO(c)
	}
	return dtos, total, nil
}

// GetEligiblePromos returns codes currently usable for new bookings.
func (s *PromoService) GetEligiblePromos(ctx context.Context) ([]*PromoDTO, error) {
	codes, err := s.store.FindEligible(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	dtos := make([]*PromoDTO, len(codes))
	for i, c := range codes {
		dtos[i] = toPromoDTO(c)
	}
	return dtos, nil
}

// Stats returns dashboard counters.
func (s *PromoService) Stats(ctx context.Context) (*promoDomain.UsageStats, error) {
	return s.store.Stats(ctx)
}

// ValidatePromo checks a code against a booking amount without consuming a
// slot. Business failures come back inside the DTO; only infrastructure
// problems return an error.
func (s *PromoService) ValidatePromo(ctx context.Context, req ValidatePromoRequest) (*ValidationDTO, error) {
	amount, err := parseAmount(req.BookingAmount, "booking_amount")
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: booking_amount must be positive", ErrInvalidInput)
	}
	if req.Code == "" && req.PromoCodeID == "" {
		return nil, fmt.Errorf("%w: either code or promo_code_id is required", ErrInvalidInput)
	}

	code, err := s.lookup(ctx, req)
	if err != nil && !errors.Is(err, promoDomain.ErrNotFound) {
		return nil, err
	}

	result := promoDomain.Evaluate(code, amount, time.Now().UTC())
	return toValidationDTO(code, result), nil
}

// CheckCode is the quick single-code variant used for live UI previews.
func (s *PromoService) CheckCode(ctx context.Context, codeString string, amount decimal.Decimal) (*ValidationDTO, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	code, err := s.store.FindByCode(ctx, codeString)
	if err != nil && !errors.Is(err, promoDomain.ErrNotFound) {
		return nil, err
	}

	result := promoDomain.Evaluate(code, amount, time.Now().UTC())
	return toValidationDTO(code, result), nil
}

func (s *PromoService) lookup(ctx context.Context, req ValidatePromoRequest) (*promoDomain.PromoCode, error) {
	if req.Code != "" {
		return s.store.FindByCode(ctx, req.Code)
	}
	id, err := uuid.Parse(req.PromoCodeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid promo_code_id", ErrInvalidInput)
	}
	return s.store.FindByID(ctx, id)
}

func toPromoDTO(p *promoDomain.PromoCode) *PromoDTO {
	return &PromoDTO{
		ID:            p.ID(),
		Code:          p.Code(),
		Description:   p.Description(),
		DiscountKind:  string(p.DiscountKind()),
		DiscountValue: p.DiscountValue(),
		MinOrder:      p.MinOrder(),
		MaxDiscount:   p.MaxDiscount(),
		ValidFrom:     p.ValidFrom().Format(dateLayout),
		ValidUntil:    p.ValidUntil().Format(dateLayout),
		UsageLimit:    p.UsageLimit(),
		UsedCount:     p.UsedCount(),
		RemainingUses: p.RemainingUses(),
		IsActive:      p.IsActive(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toValidationDTO(code *promoDomain.PromoCode, result promoDomain.ValidationResult) *ValidationDTO {
	dto := &ValidationDTO{
		Valid:          result.Valid,
		Reason:         string(result.Reason),
		Message:        result.Reason.Message(),
		DiscountAmount: result.DiscountAmount,
		FinalAmount:    result.FinalAmount,
		RemainingUses:  result.RemainingUses,
	}
	if code != nil {
		id := code.ID()
		dto.PromoCodeID = &id
	}
	return dto
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a valid amount", ErrInvalidInput, field)
	}
	return d, nil
}

func parseOptionalAmount(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := parseAmount(*raw, field)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be formatted as YYYY-MM-DD", ErrInvalidInput, field)
	}
	return t, nil
}
