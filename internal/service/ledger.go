package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/iliyamo/pitch-booking/internal/model"
	"github.com/iliyamo/pitch-booking/internal/repository"
)

// maxSaveAttempts bounds how often update retries after losing a
// versioned save to another writer.
const maxSaveAttempts = 5

// Ledger owns the in-memory copy of the store document.  Reads run under a
// shared lock against the current snapshot.  Writes mutate a clone, save
// it through the DocumentStore and only then swap it in, so a failed save
// leaves both memory and store at the previous state.
//
// When the store is a repository.VersionedStore the ledger may share it
// with other processes: every write reloads the document first and saves
// with SaveIf, retrying on ErrStale, so updates always run against the
// latest stored bookings.  Reads may lag until the next write.
type Ledger struct {
	mu     sync.RWMutex
	store  repository.DocumentStore
	shared repository.VersionedStore
	snap   *repository.Snapshot
}

// Open loads the ledger from store.  A store that was never initialized or
// holds an unreadable document is reset to an empty ledger seeded with the
// given pitches; a document without pitches gets the seed pitches added.
// Any other load failure is returned as ErrStorage.
func Open(ctx context.Context, store repository.DocumentStore, seed []model.Pitch) (*Ledger, error) {
	l := &Ledger{store: store}
	l.shared, _ = store.(repository.VersionedStore)

	for attempt := 1; ; attempt++ {
		snap, dirty, err := loadOrSeed(ctx, store, seed)
		if err != nil {
			return nil, err
		}
		if !dirty {
			l.snap = snap
			return l, nil
		}
		snap.Version++
		err = l.save(ctx, snap)
		if err == nil {
			l.snap = snap
			return l, nil
		}
		// Another instance seeded first; take its document.
		if !errors.Is(err, repository.ErrStale) || attempt >= maxSaveAttempts {
			return nil, storageError("save seeded ledger", err)
		}
	}
}

// loadOrSeed loads the stored document and reports whether seeding
// changed it.
func loadOrSeed(ctx context.Context, store repository.DocumentStore, seed []model.Pitch) (*repository.Snapshot, bool, error) {
	snap, err := store.Load(ctx)
	dirty := false
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNoDocument):
		log.Printf("ledger: store not initialized, seeding default catalog")
		snap, dirty = emptySnapshot(), true
	case errors.Is(err, repository.ErrCorrupt):
		log.Printf("ledger: %v; reinitializing with default catalog", err)
		snap, dirty = emptySnapshot(), true
	default:
		return nil, false, storageError("load ledger", err)
	}
	normalize(snap)
	if len(snap.Pitches) == 0 {
		for _, p := range seed {
			addPitch(snap, p)
		}
		dirty = true
	}
	return snap, dirty, nil
}

func normalize(snap *repository.Snapshot) {
	if snap.NextPitchID < 1 {
		snap.NextPitchID = 1
	}
	if snap.NextBookingID < 1 {
		snap.NextBookingID = 1
	}
}

func emptySnapshot() *repository.Snapshot {
	return &repository.Snapshot{
		Pitches:       []model.Pitch{},
		Bookings:      []model.Booking{},
		NextPitchID:   1,
		NextBookingID: 1,
	}
}

// addPitch assigns the next pitch identifier and appends p.
func addPitch(snap *repository.Snapshot, p model.Pitch) model.Pitch {
	p.ID = snap.NextPitchID
	snap.NextPitchID++
	snap.Pitches = append(snap.Pitches, p)
	return p
}

// view runs fn against the current snapshot under the shared lock.  fn
// must not retain or modify the snapshot.
func (l *Ledger) view(fn func(snap *repository.Snapshot)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.snap)
}

// update runs fn against a clone of the snapshot under the exclusive lock.
// When fn reports a change the clone is saved and becomes current.  An
// error from fn aborts the update without touching the store.  On a shared
// store fn may run again against a reloaded snapshot, so it must derive
// everything it records from the snapshot it is given.
func (l *Ledger) update(ctx context.Context, fn func(snap *repository.Snapshot) (bool, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for attempt := 1; ; attempt++ {
		if l.shared != nil {
			if err := l.reload(ctx); err != nil {
				return err
			}
		}
		next := l.snap.Clone()
		changed, err := fn(next)
		if err != nil || !changed {
			return err
		}
		next.Version = l.snap.Version + 1
		err = l.save(ctx, next)
		if err == nil {
			l.snap = next
			return nil
		}
		if !errors.Is(err, repository.ErrStale) || attempt >= maxSaveAttempts {
			return storageError("save ledger", err)
		}
		log.Printf("ledger: document changed by another writer, retrying (attempt %d)", attempt)
	}
}

// save writes snap, guarded by the version it was derived from when the
// store is shared.
func (l *Ledger) save(ctx context.Context, snap *repository.Snapshot) error {
	if l.shared == nil {
		return l.store.Save(ctx, snap)
	}
	return l.shared.SaveIf(ctx, snap, snap.Version-1)
}

// reload replaces the snapshot with the stored document.  Callers hold
// the exclusive lock.
func (l *Ledger) reload(ctx context.Context) error {
	snap, err := l.store.Load(ctx)
	if err != nil {
		return storageError("reload ledger", err)
	}
	normalize(snap)
	l.snap = snap
	return nil
}
