package service

import (
	"strconv"
	"sync"
)

// slotKey identifies the scope of booking conflicts: one pitch on one date.
type slotKey struct {
	pitchID int64
	date    string
}

func (k slotKey) String() string { return strconv.FormatInt(k.pitchID, 10) + "/" + k.date }

type refMutex struct {
	sync.Mutex
	refs int
}

// keyLocks hands out one mutex per slotKey.  Entries are dropped when the
// last holder or waiter releases them, so the map only grows with the
// number of keys in flight.
type keyLocks struct {
	mu sync.Mutex
	m  map[slotKey]*refMutex
}

func newKeyLocks() *keyLocks { return &keyLocks{m: make(map[slotKey]*refMutex)} }

// lock blocks until the caller owns key and returns the matching unlock.
func (k *keyLocks) lock(key slotKey) func() {
	k.mu.Lock()
	rm, ok := k.m[key]
	if !ok {
		rm = &refMutex{}
		k.m[key] = rm
	}
	rm.refs++
	k.mu.Unlock()

	rm.Lock()
	return func() {
		rm.Unlock()
		k.mu.Lock()
		rm.refs--
		if rm.refs == 0 {
			delete(k.m, key)
		}
		k.mu.Unlock()
	}
}

// inFlight reports how many keys currently have holders or waiters.
func (k *keyLocks) inFlight() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.m)
}
