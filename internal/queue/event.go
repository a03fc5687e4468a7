// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/pitch-booking/internal/model"
)

// Event types double as queue names.
const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

// Queues lists every queue the service publishes to.
var Queues = []string{TypeBookingConfirmed, TypeBookingCancelled}

// BookingEvent is published when a booking is committed or cancelled.  It
// carries enough data for consumers to log or notify without reading the
// ledger.
type BookingEvent struct {
	EventID       string  `json:"event_id"`
	Type          string  `json:"type"`
	BookingID     int64   `json:"booking_id"`
	PitchID       int64   `json:"pitch_id"`
	PitchName     string  `json:"pitch_name"`
	PitchLocation string  `json:"pitch_location"`
	CustomerName  string  `json:"customer_name"`
	BookingDate   string  `json:"booking_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	TotalPrice    float64 `json:"total_price"`
	OccurredAt    string  `json:"occurred_at"`
}

// NewBookingEvent builds an event of the given type for d with a fresh id.
func NewBookingEvent(eventType string, d model.BookingDetail, at time.Time) BookingEvent {
	return BookingEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		BookingID:     d.ID,
		PitchID:       d.PitchID,
		PitchName:     d.PitchName,
		PitchLocation: d.PitchLocation,
		CustomerName:  d.CustomerName,
		BookingDate:   d.BookingDate,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		TotalPrice:    d.TotalPrice,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
