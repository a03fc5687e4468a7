package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BookingLogger consumes booking events and appends one human friendly line
// per event to <LogDir>/booking.log.
type BookingLogger struct {
	URL    string
	LogDir string
}

// Run connects to the broker, declares the booking queues (durable) and
// consumes until ctx is cancelled.  Connection failures are retried with
// exponential backoff capped at 30s.  Messages that cannot be handled are
// rejected without requeue so one bad payload cannot stall the consumer.
func (l *BookingLogger) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(l.URL)
		if err != nil {
			log.Printf("booking-logger: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = l.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("booking-logger: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (l *BookingLogger) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-logger: set QoS failed: %v", err)
	}

	deliveries := make(chan amqp.Delivery)
	done := make(chan struct{})
	defer close(done)
	for _, name := range Queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go func(msgs <-chan amqp.Delivery) {
			for d := range msgs {
				select {
				case deliveries <- d:
				case <-done:
					return
				}
			}
		}(msgs)
	}

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chanClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
	return l.serve(ctx, deliveries, connClosed, chanClosed)
}

// serve handles deliveries until ctx ends or the broker closes either the
// connection or the channel.  A channel can be closed on its own, for
// example after a queue is deleted, and must also trigger a reconnect.
func (l *BookingLogger) serve(ctx context.Context, deliveries <-chan amqp.Delivery, connClosed, chanClosed <-chan *amqp.Error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-connClosed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case amqpErr := <-chanClosed:
			if amqpErr == nil {
				return errors.New("channel closed")
			}
			return amqpErr
		case d := <-deliveries:
			if err := l.HandleMessage(d.Body); err != nil {
				log.Printf("booking-logger: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one BookingEvent and appends its log line.
func (l *BookingLogger) HandleMessage(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return errors.New("event without type or booking id")
	}
	dir := l.LogDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single newline terminated log line.
func FormatLine(ev BookingEvent) string {
	verb := "confirmed"
	if ev.Type == TypeBookingCancelled {
		verb = "cancelled"
	}
	return fmt.Sprintf("[%s] Booking %s | booking_id=%d | pitch_id=%d | pitch=%q | location=%q | customer=%q | date=%s | slot=%s-%s | total=%.2f | event_id=%s\n",
		ev.OccurredAt, verb, ev.BookingID, ev.PitchID, ev.PitchName, ev.PitchLocation, ev.CustomerName,
		ev.BookingDate, ev.StartTime, ev.EndTime, ev.TotalPrice, ev.EventID)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
