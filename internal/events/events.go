package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Topics shared with the booking service.
const (
	TopicBookingEvents = "booking.events"
	TopicPromoEvents   = "promo.events"
)

// Event types on the booking topic.
const (
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
)

// Event types on the promo topic.
const (
	PromoRedeemed         = "promo.redeemed"
	PromoReleased         = "promo.released"
	PromoRedemptionFailed = "promo.redemption_failed"
)

// BookingConfirmedEvent is published by the booking service when a booking
// reaches its confirmed/paid state. PromoCodeID is set when the customer
// applied a code at quote time.
type BookingConfirmedEvent struct {
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingNumber string          `json:"booking_number"`
	UserID        uuid.UUID       `json:"user_id"`
	PromoCodeID   *uuid.UUID      `json:"promo_code_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ConfirmedAt   time.Time       `json:"confirmed_at"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled or refunded.
// PromoCodeID is set when the booking had redeemed a code, meaning its usage
// slot should be returned.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	PromoCodeID   *uuid.UUID `json:"promo_code_id,omitempty"`
	Reason        string     `json:"reason"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// PromoRedeemedEvent confirms that a booking consumed a usage slot.
type PromoRedeemedEvent struct {
	BookingID    uuid.UUID `json:"booking_id"`
	PromoCodeID  uuid.UUID `json:"promo_code_id"`
	Code         string    `json:"code"`
	NewUsedCount int       `json:"new_used_count"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

// PromoReleasedEvent confirms that a cancelled booking's slot was returned.
type PromoReleasedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	PromoCodeID uuid.UUID `json:"promo_code_id"`
	ReleasedAt  time.Time `json:"released_at"`
}

// PromoRedemptionFailedEvent tells the booking service to re-quote without
// the discount: the code was no longer usable at confirmation time.
type PromoRedemptionFailedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	PromoCodeID uuid.UUID `json:"promo_code_id"`
	Reason      string    `json:"reason"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}
