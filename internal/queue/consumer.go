package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer listens on the booking queues and appends one line per event
// to an audit log. It reconnects with exponential backoff until its
// context is cancelled.
type Consumer struct {
	url string
	log *zap.Logger
	out io.Writer
	mu  sync.Mutex
}

// NewConsumer returns a consumer writing audit lines to out.
func NewConsumer(url string, out io.Writer, log *zap.Logger) *Consumer {
	return &Consumer{url: url, out: out, log: log}
}

// OpenAuditLog opens (creating if needed) the append-only audit file at
// path.
func OpenAuditLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir audit log dir: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Run consumes until ctx is done. It only returns ctx's error.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking consumer: loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking consumer: set QoS failed", zap.Error(err))
	}

	merged := make(chan amqp.Delivery)
	done := make(chan struct{})
	defer close(done)
	var wg sync.WaitGroup
	for _, q := range []string{BookingConfirmed, BookingCancelled} {
		if err := declare(ch, q); err != nil {
			return err
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", q, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range msgs {
				select {
				case merged <- d:
				case <-done:
					_ = d.Nack(false, true)
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-merged:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.log.Error("booking consumer: handle message failed", zap.Error(err), zap.String("message_id", d.MessageId))
				// reject without requeue to avoid tight redelivery loops
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and writes its audit line.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := FormatAuditLine(ev)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	c.log.Info("booking event", zap.String("type", ev.Type), zap.String("booking_id", ev.BookingID))
	return nil
}

// FormatAuditLine renders ev as a single human-readable line.
func FormatAuditLine(ev BookingEvent) (string, error) {
	var verb string
	switch ev.Type {
	case BookingConfirmed:
		verb = "Booking confirmed"
	case BookingCancelled:
		verb = "Booking cancelled"
		if ev.Forced {
			verb = "Booking cancelled by admin"
		}
	default:
		return "", fmt.Errorf("unknown event type %q", ev.Type)
	}
	return fmt.Sprintf("[%s] %s | booking_id=%s | user=%s | show_id=%s | event=%q | venue=%q | starts_at=%s | total=%.2f | seats=[%s]\n",
		ev.OccurredAt, verb, ev.BookingID, ev.UserEmail, ev.ShowID, ev.EventName, ev.VenueName, ev.StartsAt,
		ev.TotalAmount, strings.Join(ev.Seats, ",")), nil
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
