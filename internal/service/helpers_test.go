package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pitch-booking/internal/queue"
	"github.com/iliyamo/pitch-booking/internal/repository"
)

// memStore is an in-memory DocumentStore with injectable failures.
type memStore struct {
	mu      sync.Mutex
	snap    *repository.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) (*repository.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return nil, repository.ErrNoDocument
	}
	return m.snap.Clone(), nil
}

func (m *memStore) Save(_ context.Context, s *repository.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = s.Clone()
	m.saves++
	return nil
}

func (m *memStore) setSaveErr(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memStore) stored() *repository.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC)

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) published() []queue.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.BookingEvent(nil), p.events...)
}

var errDiskFull = errors.New("disk full")

// newTestScheduler opens a ledger seeded with the default catalog.
func newTestScheduler(t *testing.T) (*Scheduler, *memStore, *fakePublisher) {
	t.Helper()
	store := &memStore{}
	l, err := Open(context.Background(), store, DefaultPitches())
	require.NoError(t, err)
	pub := &fakePublisher{}
	s := NewScheduler(l, pub, nil)
	s.clock = fixedClock{t: testNow}
	t.Cleanup(s.Close)
	return s, store, pub
}

func bookingReq(pitchID int64, date, start, end string) BookingRequest {
	return BookingRequest{
		PitchID:       pitchID,
		CustomerName:  "Jamie Rivera",
		CustomerEmail: "jamie@example.com",
		CustomerPhone: "+1 555 0100",
		Date:          date,
		StartTime:     start,
		EndTime:       end,
	}
}
