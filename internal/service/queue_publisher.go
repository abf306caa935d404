// Package service holds the background collaborators of the API: the
// RabbitMQ publisher for booking events, the SMS notifier and the rating
// scheduler.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/hotel-booking/internal/queue"
)

// BookingPublisher publishes booking events to queue.BookingQueue.  A
// connection is dialed per publish; booking writes are rare enough that a
// pooled channel is not needed.
type BookingPublisher struct {
	URL string
	Log *slog.Logger
}

func NewBookingPublisher(url string, log *slog.Logger) *BookingPublisher {
	return &BookingPublisher{URL: url, Log: log}
}

// Publish sends ev as a persistent JSON message.  Errors are logged and
// returned; callers treat them as non-fatal.
func (p *BookingPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	msg, err := buildPublishing(ev)
	if err != nil {
		return err
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn("rabbitmq dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.BookingQueue, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq queue declare failed", "error", err)
		return err
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookingQueue, false, false, msg); err != nil {
		p.Log.Warn("rabbitmq publish failed", "error", err, "booking_id", ev.BookingID)
		return err
	}
	p.Log.Debug("booking event published", "type", ev.Type, "booking_id", ev.BookingID, "message_id", msg.MessageId)
	return nil
}

func buildPublishing(ev queue.BookingEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal booking event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
