package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Wanderway-Travel/service-promo/internal/application"
	"github.com/Wanderway-Travel/service-promo/internal/domain/promo"
	"github.com/Wanderway-Travel/service-promo/pkg/kafka"
)

// unavailableStore simulates a database outage. Only FindByID is reachable
// from these tests.
type unavailableStore struct {
	promo.CodeStore
}

func (unavailableStore) FindByID(context.Context, uuid.UUID) (*promo.PromoCode, error) {
	return nil, errors.New("find promo code by id: connection refused")
}

func bookingMessage(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-booking", eventType, data)
	require.NoError(t, err)
	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: TopicBookingEvents, Value: value}
}

func TestHandleMessage_InfrastructureErrorSurfaces(t *testing.T) {
	logger := zap.NewNop()
	c := &BookingEventConsumer{
		redemptions: application.NewRedemptionService(unavailableStore{}, logger),
		logger:      logger,
	}

	promoID := uuid.New()
	msg := bookingMessage(t, BookingConfirmed, BookingConfirmedEvent{
		BookingID:   uuid.New(),
		UserID:      uuid.New(),
		PromoCodeID: &promoID,
		TotalAmount: decimal.NewFromInt(200),
		ConfirmedAt: time.Now().UTC(),
		OccurredAt:  time.Now().UTC(),
	})

	err := c.handleMessage(context.Background(), msg)
	require.Error(t, err, "a store outage must surface so the message is redelivered")
	_, isBusiness := promo.FailureReason(err)
	assert.False(t, isBusiness, "an outage is not a business refusal")
}

func TestHandleMessage_DropsUnparseablePayloads(t *testing.T) {
	logger := zap.NewNop()
	c := &BookingEventConsumer{
		redemptions: application.NewRedemptionService(unavailableStore{}, logger),
		logger:      logger,
	}

	err := c.handleMessage(context.Background(), kafkago.Message{
		Topic: TopicBookingEvents,
		Value: []byte("not json"),
	})
	assert.NoError(t, err, "garbage never becomes parseable, so it must not block the partition")
}

func TestHandleMessage_IgnoresUnrelatedEventTypes(t *testing.T) {
	logger := zap.NewNop()
	c := &BookingEventConsumer{
		redemptions: application.NewRedemptionService(unavailableStore{}, logger),
		logger:      logger,
	}

	msg := bookingMessage(t, "booking.created", map[string]string{"booking_id": uuid.NewString()})
	assert.NoError(t, c.handleMessage(context.Background(), msg))
}

func TestHandleMessage_SkipsBookingsWithoutPromo(t *testing.T) {
	logger := zap.NewNop()
	c := &BookingEventConsumer{
		redemptions: application.NewRedemptionService(unavailableStore{}, logger),
		logger:      logger,
	}

	msg := bookingMessage(t, BookingConfirmed, BookingConfirmedEvent{
		BookingID:   uuid.New(),
		UserID:      uuid.New(),
		TotalAmount: decimal.NewFromInt(200),
		OccurredAt:  time.Now().UTC(),
	})
	assert.NoError(t, c.handleMessage(context.Background(), msg),
		"bookings without a code never touch the store")
}
