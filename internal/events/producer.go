package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stayflow/booking-pipeline/internal/domain"
)

type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// PublishBookingCreated appends the booking to the topic. Best effort: the
// booking is already committed when this runs, so a failure is logged and
// returned without retry and the caller never rolls anything back.
func (p *Producer) PublishBookingCreated(ctx context.Context, b domain.Booking) error {
	evt := BookingCreatedEvent{
		ID:        strconv.FormatInt(b.ID, 10),
		UserID:    b.UserID,
		HotelID:   b.HotelID,
		PromoCode: b.PromoCode,
		Discount:  b.Discount,
		Price:     b.Price,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("Failed to marshal booking event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.ID),
		Value: payload,
	}

	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(wctx, msg); err != nil {
		p.logger.Error("Failed to publish booking event",
			zap.String("booking_id", evt.ID),
			zap.Error(err))
		return err
	}

	p.logger.Info("Booking event published",
		zap.String("booking_id", evt.ID),
		zap.String("user_id", evt.UserID))

	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
