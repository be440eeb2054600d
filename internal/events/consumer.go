package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stayflow/booking-pipeline/internal/domain"
)

// MessageSource is the slice of kafka.Reader the consumer needs: fetch the
// next message at the uncommitted offset, and commit offsets explicitly.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Applier lands one booking event in the aggregate store, atomically and
// idempotently.
type Applier interface {
	ApplyBookingCreated(ctx context.Context, entry domain.LedgerEntry) error
}

// NewReader joins the consumer group for the booking topic. Restarts resume
// from the group's last committed offset.
func NewReader(brokers, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     strings.Split(brokers, ","),
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.FirstOffset,
	})
}

// Consumer pulls booking events and folds them into the aggregates. The
// offset for a message is committed only after its transaction is durable,
// so a crash in between causes a redelivery that the ledger absorbs.
type Consumer struct {
	source  MessageSource
	applier Applier
	logger  *zap.Logger
	backoff time.Duration
}

func NewConsumer(source MessageSource, applier Applier, logger *zap.Logger) *Consumer {
	return &Consumer{
		source:  source,
		applier: applier,
		logger:  logger,
		backoff: time.Second,
	}
}

// Run loops until the context is cancelled or the source is closed. An event
// that fails to apply is retried forever with a fixed backoff: stalling the
// partition is preferable to silently dropping an aggregate update. Only
// unparsable payloads are skipped.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Info("Consumer draining, stopping")
				return nil
			}
			c.logger.Error("Failed to fetch message", zap.Error(err))
			if !c.pause(ctx) {
				return nil
			}
			continue
		}

		entry, ok := c.decode(msg)
		if !ok {
			// Unprocessable payload. Advance past it so one poisoned
			// message cannot stall the partition.
			c.commit(ctx, msg)
			continue
		}

		for {
			err := c.applier.ApplyBookingCreated(ctx, entry)
			if err == nil {
				break
			}
			c.logger.Error("Failed to apply booking event, will retry",
				zap.String("booking_id", entry.BookingID),
				zap.Error(err))
			if !c.pause(ctx) {
				return nil
			}
		}

		c.commit(ctx, msg)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) decode(msg kafka.Message) (domain.LedgerEntry, bool) {
	var evt BookingCreatedEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.Warn("Skipping malformed booking event",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		return domain.LedgerEntry{}, false
	}
	if evt.ID == "" || evt.UserID == "" || evt.HotelID == "" {
		c.logger.Warn("Skipping booking event with missing fields",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset))
		return domain.LedgerEntry{}, false
	}
	entry, err := evt.LedgerEntry()
	if err != nil {
		c.logger.Warn("Skipping booking event with bad timestamp",
			zap.String("booking_id", evt.ID),
			zap.Error(err))
		return domain.LedgerEntry{}, false
	}
	return entry, true
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.source.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		// The transaction already landed; redelivery after a lost commit
		// is deduped by the ledger.
		c.logger.Error("Failed to commit offset",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
	}
}

// pause waits out the retry backoff; false means shutdown was requested.
func (c *Consumer) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.backoff):
		return true
	}
}
