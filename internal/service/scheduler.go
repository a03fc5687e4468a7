package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/pitch-booking/internal/metrics"
	"github.com/iliyamo/pitch-booking/internal/model"
	"github.com/iliyamo/pitch-booking/internal/queue"
	"github.com/iliyamo/pitch-booking/internal/repository"
)

// Clock abstracts time so tests can pin creation timestamps.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// EventPublisher receives booking lifecycle events after they are committed.
// Publish errors are logged and never undo the booking.  The context
// passed to Publish is not tied to any request.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// BookingRequest carries a candidate booking as submitted by a customer.
// Date is YYYY-MM-DD; StartTime and EndTime are zero padded HH:MM.
type BookingRequest struct {
	PitchID       int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Date          string
	StartTime     string
	EndTime       string
}

// Availability is the advisory answer for one slot.  Conflicts lists the
// existing bookings that intersect the slot.
type Availability struct {
	Available bool
	Conflicts []model.Booking
}

// outboxSize bounds the events waiting for the publisher.
const outboxSize = 256

// Scheduler admits bookings.  Commits for the same pitch and date are
// serialized by a per-slot lock held across the conflict check and the
// write, so two overlapping requests can never both succeed.  Requests for
// different pitches or dates only contend on the ledger save itself.
//
// Events are published by one background goroutine in commit order, so a
// slow or unreachable broker never delays a response.
type Scheduler struct {
	ledger  *Ledger
	locks   *keyLocks
	events  EventPublisher
	metrics *metrics.Metrics
	clock   Clock

	outMu   sync.Mutex
	closed  bool
	outbox  chan queue.BookingEvent
	drained chan struct{}
}

// NewScheduler returns a Scheduler over l.  events and m may be nil.  When
// events is set, call Close on shutdown to flush queued events.
func NewScheduler(l *Ledger, events EventPublisher, m *metrics.Metrics) *Scheduler {
	s := &Scheduler{
		ledger:  l,
		locks:   newKeyLocks(),
		events:  events,
		metrics: m,
		clock:   RealClock{},
	}
	if events != nil {
		s.outbox = make(chan queue.BookingEvent, outboxSize)
		s.drained = make(chan struct{})
		go s.runPublisher()
	}
	return s
}

// CheckAvailability reports the bookings on pitchID and date that overlap
// [start,end).  It takes no lock and reserves nothing; a later
// CreateBooking re-checks under the slot lock.
func (s *Scheduler) CheckAvailability(ctx context.Context, pitchID int64, date, start, end string) (*Availability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case pitchID == 0:
		return nil, missingField("pitchId")
	case blank(date):
		return nil, missingField("date")
	case blank(start):
		return nil, missingField("startTime")
	case blank(end):
		return nil, missingField("endTime")
	}
	var conflicts []model.Booking
	s.ledger.view(func(snap *repository.Snapshot) {
		conflicts = conflicting(snap.Bookings, pitchID, date, start, end)
	})
	if conflicts == nil {
		conflicts = []model.Booking{}
	}
	return &Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// CreateBooking validates req, checks the slot, prices it and commits it.
// Checks run in this order and stop at the first failure: missing fields,
// email shape, date and time shape, start before end, overlap
// (ErrSlotBooked), pitch existence (ErrPitchNotFound).
func (s *Scheduler) CreateBooking(ctx context.Context, req BookingRequest) (*model.BookingDetail, error) {
	started := s.clock.Now()
	if err := validateBooking(req); err != nil {
		s.metrics.ObserveRejected("validation")
		return nil, err
	}
	detail, err := s.commit(ctx, req)
	if err != nil {
		s.metrics.ObserveRejected(rejectReason(err))
		return nil, err
	}
	s.metrics.ObserveCreated(s.clock.Now().Sub(started))
	s.publish(queue.TypeBookingConfirmed, *detail)
	return detail, nil
}

func (s *Scheduler) commit(ctx context.Context, req BookingRequest) (*model.BookingDetail, error) {
	key := slotKey{pitchID: req.PitchID, date: req.Date}
	unlock := s.locks.lock(key)
	defer unlock()

	// The checks run inside update so that a retry after another writer
	// saved repeats them against the reloaded bookings.
	var detail model.BookingDetail
	err := s.ledger.update(ctx, func(snap *repository.Snapshot) (bool, error) {
		if len(conflicting(snap.Bookings, req.PitchID, req.Date, req.StartTime, req.EndTime)) > 0 {
			return false, ErrSlotBooked
		}
		pitch := findPitch(snap, req.PitchID)
		if pitch == nil {
			return false, ErrPitchNotFound
		}
		created := model.Booking{
			ID:            snap.NextBookingID,
			PitchID:       req.PitchID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			BookingDate:   req.Date,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			TotalPrice:    totalPrice(pitch.PricePerHour, req.StartTime, req.EndTime),
			CreatedAt:     s.clock.Now().UTC(),
		}
		snap.NextBookingID++
		snap.Bookings = append(snap.Bookings, created)
		detail = model.BookingDetail{Booking: created, PitchName: pitch.Name, PitchLocation: pitch.Location}
		return true, nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			log.Printf("scheduler: commit %s %s-%s failed: %v", key, req.StartTime, req.EndTime, err)
		}
		return nil, err
	}
	return &detail, nil
}

// ListBookings returns every booking with its pitch name and location,
// newest date first and, within a date, latest start first.
func (s *Scheduler) ListBookings(ctx context.Context) ([]model.BookingDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.BookingDetail
	s.ledger.view(func(snap *repository.Snapshot) {
		out = make([]model.BookingDetail, 0, len(snap.Bookings))
		for _, b := range snap.Bookings {
			out = append(out, enrich(snap, b))
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BookingDate != out[j].BookingDate {
			return out[i].BookingDate > out[j].BookingDate
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, nil
}

// ListBookingsFor returns the bookings on one pitch and date ordered by
// start time.
func (s *Scheduler) ListBookingsFor(ctx context.Context, pitchID int64, date string) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []model.Booking{}
	s.ledger.view(func(snap *repository.Snapshot) {
		for _, b := range snap.Bookings {
			if b.PitchID == pitchID && b.BookingDate == date {
				out = append(out, b)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// CancelBooking removes the booking with the given id.  It reports false,
// and leaves the store untouched, when no such booking exists.
func (s *Scheduler) CancelBooking(ctx context.Context, id int64) (bool, error) {
	var (
		removed model.BookingDetail
		found   bool
	)
	err := s.ledger.update(ctx, func(snap *repository.Snapshot) (bool, error) {
		found = false
		for i, b := range snap.Bookings {
			if b.ID == id {
				removed = enrich(snap, b)
				snap.Bookings = append(snap.Bookings[:i], snap.Bookings[i+1:]...)
				found = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		log.Printf("scheduler: cancel booking %d failed: %v", id, err)
		return false, err
	}
	if !found {
		return false, nil
	}
	s.metrics.ObserveCancelled()
	s.publish(queue.TypeBookingCancelled, removed)
	return true, nil
}

// publish queues an event for the background publisher.  It never blocks
// the request: when the outbox is full the event is dropped and logged.
func (s *Scheduler) publish(eventType string, d model.BookingDetail) {
	if s.outbox == nil {
		return
	}
	ev := queue.NewBookingEvent(eventType, d, s.clock.Now())
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.closed {
		log.Printf("scheduler: closed, dropping %s for booking %d", eventType, d.ID)
		return
	}
	select {
	case s.outbox <- ev:
	default:
		log.Printf("scheduler: event outbox full, dropping %s for booking %d", eventType, d.ID)
	}
}

// runPublisher delivers queued events in commit order until Close.
func (s *Scheduler) runPublisher() {
	defer close(s.drained)
	for ev := range s.outbox {
		if err := s.events.Publish(context.Background(), ev); err != nil {
			log.Printf("scheduler: publish %s for booking %d failed: %v", ev.Type, ev.BookingID, err)
		}
	}
}

// Close stops accepting events and waits until every queued event has
// been handed to the publisher.  It is safe to call more than once.
func (s *Scheduler) Close() {
	if s.outbox == nil {
		return
	}
	s.outMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.outbox)
	}
	s.outMu.Unlock()
	<-s.drained
}

func validateBooking(req BookingRequest) error {
	switch {
	case req.PitchID == 0:
		return missingField("pitchId")
	case blank(req.CustomerName):
		return missingField("customerName")
	case blank(req.CustomerEmail):
		return missingField("customerEmail")
	case blank(req.CustomerPhone):
		return missingField("customerPhone")
	case blank(req.Date):
		return missingField("bookingDate")
	case blank(req.StartTime):
		return missingField("startTime")
	case blank(req.EndTime):
		return missingField("endTime")
	}
	if !validEmail(req.CustomerEmail) {
		return ErrInvalidEmail
	}
	if !validDate(req.Date) {
		return ErrInvalidDate
	}
	if !validTime(req.StartTime) || !validTime(req.EndTime) {
		return ErrInvalidTime
	}
	if req.StartTime >= req.EndTime {
		return ErrEndBeforeStart
	}
	return nil
}

func enrich(snap *repository.Snapshot, b model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: b, PitchName: "Unknown", PitchLocation: "Unknown"}
	if p := findPitch(snap, b.PitchID); p != nil {
		d.PitchName = p.Name
		d.PitchLocation = p.Location
	}
	return d
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStorage):
		return "storage"
	}
	return "other"
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
