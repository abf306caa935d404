package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Notifier delivers a text message to a phone number.
type Notifier interface {
	Notify(ctx context.Context, to, body string) error
}

// ProfileLookup resolves the guest of a booking.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Profile, error)
}

// Consumer reads BookingQueue and notifies guests.  Guests without a phone
// number are only logged.
type Consumer struct {
	URL      string
	Profiles ProfileLookup
	Notifier Notifier
	Log      *slog.Logger
}

// Run connects, consumes and reconnects with backoff until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("booking consumer dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("booking consumer loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("booking consumer qos failed", "error", err)
	}
	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.Log.Error("booking event rejected", "message_id", d.MessageId, "error", err)
				_ = d.Nack(false, false) // no requeue, avoids a hot loop on bad payloads
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle processes a single message body.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == 0 || ev.UserID == 0 {
		return errors.New("event without booking or user")
	}
	c.Log.Info("booking event",
		"type", ev.Type,
		"booking_id", ev.BookingID,
		"reference", ev.Reference,
		"hotel", ev.HotelName,
		"status", ev.Status,
		"previous_status", ev.PreviousStatus,
		"total_cents", ev.TotalPriceCents,
	)

	guest, err := c.Profiles.GetByID(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("load guest %d: %w", ev.UserID, err)
	}
	if guest.Phone == nil || *guest.Phone == "" {
		c.Log.Debug("guest has no phone, skipping sms", "user_id", ev.UserID)
		return nil
	}
	if err := c.Notifier.Notify(ctx, *guest.Phone, ev.Message()); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
