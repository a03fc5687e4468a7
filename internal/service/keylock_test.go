package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLocksSerializeSameKey(t *testing.T) {
	k := newKeyLocks()
	key := slotKey{pitchID: 1, date: "2025-06-01"}

	var (
		wg      sync.WaitGroup
		holders int32
		maxSeen int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock(key)
			n := atomic.AddInt32(&holders, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			atomic.AddInt32(&holders, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Zero(t, k.inFlight())
}

func TestKeyLocksIndependentKeys(t *testing.T) {
	k := newKeyLocks()
	a := k.lock(slotKey{pitchID: 1, date: "2025-06-01"})
	b := k.lock(slotKey{pitchID: 1, date: "2025-06-02"})
	assert.Equal(t, 2, k.inFlight())
	a()
	b()
	assert.Zero(t, k.inFlight())
	assert.Equal(t, "1/2025-06-01", slotKey{pitchID: 1, date: "2025-06-01"}.String())
}
