package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	promoDomain "github.com/Wanderway-Travel/service-promo/internal/domain/promo"
)

// PromoCodeModel is the GORM model for the promo_codes table.
type PromoCodeModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Code          string              `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description   string              `gorm:"type:text"`
	DiscountKind  string              `gorm:"type:varchar(20);not null"`
	DiscountValue decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	MinOrder      decimal.NullDecimal `gorm:"type:numeric(12,2);column:minimum_order_amount"`
	MaxDiscount   decimal.NullDecimal `gorm:"type:numeric(12,2);column:maximum_discount_amount"`
	ValidFrom     time.Time           `gorm:"type:date;not null"`
	ValidUntil    time.Time           `gorm:"type:date;not null"`
	UsageLimit    *int                `gorm:""`
	UsedCount     int                 `gorm:"not null;default:0"`
	IsActive      bool                `gorm:"not null;default:true"`
	CreatedBy     uuid.UUID           `gorm:"type:uuid;not null"`
	CreatedAt     time.Time           `gorm:"not null"`
	UpdatedAt     time.Time           `gorm:"not null"`
}

// TableName sets the table name.
func (PromoCodeModel) TableName() string { return "promo_codes" }

// GormCodeStore implements promo.CodeStore using GORM.
type GormCodeStore struct {
	db *gorm.DB
}

// NewGormCodeStore creates a new GormCodeStore.
func NewGormCodeStore(db *gorm.DB) *GormCodeStore {
	return &GormCodeStore{db: db}
}

// FindByCode returns a promo code by its canonical code string.
func (r *GormCodeStore) FindByCode(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	var model PromoCodeModel
	err := r.db.WithContext(ctx).
		Where("code = ?", promoDomain.CanonicalCode(code)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promoDomain.ErrNotFound
		}
		return nil, fmt.Errorf("find promo code by code: %w", err)
	}
	return toDomain(&model), nil
}

// FindByID returns a promo code by ID.
func (r *GormCodeStore) FindByID(ctx context.Context, id uuid.UUID) (*promoDomain.PromoCode, error) {
	var model PromoCodeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promoDomain.ErrNotFound
		}
		return nil, fmt.Errorf("find promo code by id: %w", err)
	}
	return toDomain(&model), nil
}

// FindEligible returns codes that are active, inside their date window, and
// have redemption slots left as of the given day.
func (r *GormCodeStore) FindEligible(ctx context.Context, today time.Time) ([]*promoDomain.PromoCode, error) {
	day := promoDomain.DateOf(today)

	var models []PromoCodeModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("valid_from <= ? AND valid_until >= ?", day, day).
		Where("usage_limit IS NULL OR used_count < usage_limit").
		Order("code").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("find eligible promo codes: %w", err)
	}

	codes := make([]*promoDomain.PromoCode, len(models))
	for i, m := range models {
		codes[i] = toDomain(&m)
	}
	return codes, nil
}

// List returns a filtered page of promo codes plus the unpaged total.
func (r *GormCodeStore) List(ctx context.Context, filter promoDomain.ListFilter) ([]*promoDomain.PromoCode, int64, error) {
	q := r.db.WithContext(ctx).Model(&PromoCodeModel{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("code ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.DiscountKind != "" {
		q = q.Where("discount_kind = ?", string(filter.DiscountKind))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count promo codes: %w", err)
	}

	var models []PromoCodeModel
	err := q.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list promo codes: %w", err)
	}

	codes := make([]*promoDomain.PromoCode, len(models))
	for i, m := range models {
		codes[i] = toDomain(&m)
	}
	return codes, total, nil
}

// Save persists a new promo code.
func (r *GormCodeStore) Save(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toModel(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("save promo code: %w", err)
	}
	return nil
}

// Update persists administrative edits. The used_count column is deliberately
// excluded so stale aggregate snapshots can never clobber the redemption
// counter.
func (r *GormCodeStore) Update(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toModel(p)
	res := r.db.WithContext(ctx).
		Model(&PromoCodeModel{}).
		Where("id = ?", p.ID()).
		Select("*").
		Omit("used_count", "created_at", "created_by").
		Updates(&model)
	if res.Error != nil {
		return fmt.Errorf("update promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return promoDomain.ErrNotFound
	}
	return nil
}

// Delete removes a promo code. Deleting a code with outstanding redemptions is
// allowed; booking history is the booking service's concern.
func (r *GormCodeStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PromoCodeModel{})
	if res.Error != nil {
		return fmt.Errorf("delete promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return promoDomain.ErrNotFound
	}
	return nil
}

// CompareAndIncrementUsedCount consumes one redemption slot with a single
// conditional UPDATE: it only matches while the counter still equals expected
// and sits below the usage limit, so the used_count <= usage_limit invariant
// holds under concurrent redeemers on any number of replicas.
func (r *GormCodeStore) CompareAndIncrementUsedCount(ctx context.Context, id uuid.UUID, expected int) (*promoDomain.PromoCode, error) {
	res := r.db.WithContext(ctx).
		Model(&PromoCodeModel{}).
		Where("id = ? AND used_count = ?", id, expected).
		Where("usage_limit IS NULL OR used_count < usage_limit").
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("increment used count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, promoDomain.ErrConflict
	}
	return r.FindByID(ctx, id)
}

// CompareAndDecrementUsedCount returns a redemption slot, guarded the same
// way and floored at zero by the used_count > 0 predicate.
func (r *GormCodeStore) CompareAndDecrementUsedCount(ctx context.Context, id uuid.UUID, expected int) (*promoDomain.PromoCode, error) {
	res := r.db.WithContext(ctx).
		Model(&PromoCodeModel{}).
		Where("id = ? AND used_count = ? AND used_count > 0", id, expected).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count - 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("decrement used count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, promoDomain.ErrConflict
	}
	return r.FindByID(ctx, id)
}

// Stats aggregates dashboard counters over the whole table.
func (r *GormCodeStore) Stats(ctx context.Context) (*promoDomain.UsageStats, error) {
	var stats promoDomain.UsageStats

	if err := r.db.WithContext(ctx).Model(&PromoCodeModel{}).Count(&stats.TotalCodes).Error; err != nil {
		return nil, fmt.Errorf("count promo codes: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&PromoCodeModel{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveCodes).Error; err != nil {
		return nil, fmt.Errorf("count active promo codes: %w", err)
	}
	err := r.db.WithContext(ctx).Model(&PromoCodeModel{}).
		Select("COALESCE(SUM(used_count), 0)").
		Scan(&stats.TotalRedemptions).Error
	if err != nil {
		return nil, fmt.Errorf("sum redemptions: %w", err)
	}
	return &stats, nil
}

func toModel(p *promoDomain.PromoCode) PromoCodeModel {
	return PromoCodeModel{
		ID:            p.ID(),
		Code:          p.Code(),
		Description:   p.Description(),
		DiscountKind:  string(p.DiscountKind()),
		DiscountValue: p.DiscountValue(),
		MinOrder:      toNullDecimal(p.MinOrder()),
		MaxDiscount:   toNullDecimal(p.MaxDiscount()),
		ValidFrom:     p.ValidFrom(),
		ValidUntil:    p.ValidUntil(),
		UsageLimit:    p.UsageLimit(),
		UsedCount:     p.UsedCount(),
		IsActive:      p.IsActive(),
		CreatedBy:     p.CreatedBy(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toDomain(m *PromoCodeModel) *promoDomain.PromoCode {
	return promoDomain.Reconstruct(
		m.ID, m.Code, m.Description,
		promoDomain.DiscountKind(m.DiscountKind),
		m.DiscountValue,
		fromNullDecimal(m.MinOrder), fromNullDecimal(m.MaxDiscount),
		m.ValidFrom, m.ValidUntil,
		m.UsageLimit, m.UsedCount, m.IsActive,
		m.CreatedBy, m.CreatedAt, m.UpdatedAt,
	)
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}
