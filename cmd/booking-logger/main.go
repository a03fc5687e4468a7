// Command booking-logger consumes booking events from RabbitMQ and appends
// one line per event to booking.log.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/pitch-booking/internal/config"
	"github.com/iliyamo/pitch-booking/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := &queue.BookingLogger{URL: cfg.AMQPURL, LogDir: cfg.BookingLogDir}
	log.Printf("booking-logger: consuming %v, writing to %s", queue.Queues, cfg.BookingLogDir)
	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("booking-logger: %v", err)
	}
	log.Println("booking-logger: stopped")
}
