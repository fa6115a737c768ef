package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/lithammer/shortuuid/v3"
	amqp "github.com/rabbitmq/amqp091-go"
)

// dialTimeout caps connect plus AMQP handshake when ctx has no earlier
// deadline.
const dialTimeout = 5 * time.Second

// Publisher sends booking events to the default exchange, routed by event
// type to a durable queue of the same name. It opens a fresh connection for
// every Publish and holds no connection state between calls.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish sends ev as a persistent JSON message. A missing MessageID is
// filled in.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	if ev.Type != BookingConfirmed && ev.Type != BookingCancelled {
		return fmt.Errorf("queue: unknown event type %q", ev.Type)
	}
	if ev.MessageID == "" {
		ev.MessageID = shortuuid.New()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("queue: marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: dialContext(ctx)})
	if err != nil {
		return fmt.Errorf("queue: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("queue: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, ev.Type); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.MessageID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ev.Type, false, false, pub); err != nil {
		return fmt.Errorf("queue: publish: %w", err)
	}
	return nil
}

// dialContext returns an amqp dialer bound to ctx. The connection deadline
// covers the handshake; amqp clears it once the connection is open.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(dialTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		d := net.Dialer{Deadline: deadline}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func declare(ch *amqp.Channel, name string) error {
	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare %s: %w", name, err)
	}
	return nil
}
