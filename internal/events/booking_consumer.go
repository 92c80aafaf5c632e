package events

import (
	"context"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Wanderway-Travel/service-promo/internal/application"
	promoDomain "github.com/Wanderway-Travel/service-promo/internal/domain/promo"
	"github.com/Wanderway-Travel/service-promo/pkg/kafka"
)

const eventSource = "service-promo"

// BookingEventConsumer listens to booking lifecycle events and drives promo
// redemption and release.
type BookingEventConsumer struct {
	consumer    *kafka.Consumer
	producer    *kafka.Producer
	redemptions *application.RedemptionService
	logger      *zap.Logger
}

// NewBookingEventConsumer creates a consumer for booking events.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	redemptions *application.RedemptionService,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &BookingEventConsumer{
		consumer:    consumer,
		producer:    producer,
		redemptions: redemptions,
		logger:      logger,
	}
}

// Start begins consuming booking events. It blocks until the context is
// cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming messages by event type.
func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		// Malformed payloads never become parseable: drop, don't redeliver.
		return nil
	}

	switch {
	case strings.EqualFold(ce.Type, BookingConfirmed):
		return c.handleBookingConfirmed(ctx, ce)
	case strings.EqualFold(ce.Type, BookingCancelled):
		return c.handleBookingCancelled(ctx, ce)
	default:
		c.logger.Debug("ignoring unhandled booking event type", zap.String("type", ce.Type))
		return nil
	}
}

// handleBookingConfirmed redeems the booking's promo code, if it carries one.
// Business refusals are answered with a redemption-failed event so the
// booking service can re-quote; only infrastructure errors trigger a
// redelivery.
func (c *BookingEventConsumer) handleBookingConfirmed(ctx context.Context, ce kafka.CloudEvent) error {
	var event BookingConfirmedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse BookingConfirmedEvent data", zap.Error(err))
		return nil
	}
	if event.PromoCodeID == nil {
		return nil
	}

	receipt, err := c.redemptions.Redeem(ctx, *event.PromoCodeID)
	if err != nil {
		if reason, ok := promoDomain.FailureReason(err); ok {
			c.logger.Warn("promo redemption refused",
				zap.String("booking_id", event.BookingID.String()),
				zap.String("promo_code_id", event.PromoCodeID.String()),
				zap.String("reason", string(reason)),
			)
			return c.producer.Publish(ctx, TopicPromoEvents, eventSource, PromoRedemptionFailed,
				event.BookingID.String(), PromoRedemptionFailedEvent{
					BookingID:   event.BookingID,
					PromoCodeID: *event.PromoCodeID,
					Reason:      string(reason),
					Message:     reason.Message(),
					OccurredAt:  time.Now().UTC(),
				})
		}
		return err
	}

	return c.producer.Publish(ctx, TopicPromoEvents, eventSource, PromoRedeemed,
		event.BookingID.String(), PromoRedeemedEvent{
			BookingID:    event.BookingID,
			PromoCodeID:  receipt.PromoCodeID,
			Code:         receipt.Code,
			NewUsedCount: receipt.NewUsedCount,
			RedeemedAt:   receipt.RedeemedAt,
		})
}

// handleBookingCancelled returns the usage slot the booking had consumed.
func (c *BookingEventConsumer) handleBookingCancelled(ctx context.Context, ce kafka.CloudEvent) error {
	var event BookingCancelledEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse BookingCancelledEvent data", zap.Error(err))
		return nil
	}
	if event.PromoCodeID == nil {
		return nil
	}

	if err := c.redemptions.Release(ctx, *event.PromoCodeID); err != nil {
		if reason, ok := promoDomain.FailureReason(err); ok {
			// Underflow here means the booking never redeemed, or was already
			// released: a caller bug worth an alert, not a redelivery loop.
			c.logger.Error("promo release refused",
				zap.String("booking_id", event.BookingID.String()),
				zap.String("promo_code_id", event.PromoCodeID.String()),
				zap.String("reason", string(reason)),
			)
			return nil
		}
		return err
	}

	return c.producer.Publish(ctx, TopicPromoEvents, eventSource, PromoReleased,
		event.BookingID.String(), PromoReleasedEvent{
			BookingID:   event.BookingID,
			PromoCodeID: *event.PromoCodeID,
			ReleasedAt:  time.Now().UTC(),
		})
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}
