package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/pitch-booking/internal/model"
)

// Snapshot is the whole-store document.  The JSON field names match the
// document written by earlier versions of the booking app so existing
// database.json files load unchanged.  Version counts saves; documents
// written before it existed load as version 0.
type Snapshot struct {
	Pitches       []model.Pitch   `json:"pitches"`
	Bookings      []model.Booking `json:"bookings"`
	NextPitchID   int64           `json:"nextPitchId"`
	NextBookingID int64           `json:"nextBookingId"`
	Version       int64           `json:"version"`
}

// DocumentStore loads and saves a Snapshot.  Save overwrites whatever is
// stored, so a plain DocumentStore must have a single writer.
type DocumentStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// VersionedStore is a DocumentStore that several processes may write.
// SaveIf stores snap only while the stored document still has version
// prev, and returns ErrStale otherwise.  A missing or undecodable document
// counts as version 0.
type VersionedStore interface {
	DocumentStore
	SaveIf(ctx context.Context, snap *Snapshot, prev int64) error
}

// Clone returns a deep copy so callers can mutate the result without
// affecting the original.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Pitches:       make([]model.Pitch, len(s.Pitches)),
		Bookings:      make([]model.Booking, len(s.Bookings)),
		NextPitchID:   s.NextPitchID,
		NextBookingID: s.NextBookingID,
		Version:       s.Version,
	}
	copy(out.Pitches, s.Pitches)
	copy(out.Bookings, s.Bookings)
	return out
}

// encodeSnapshot renders the document in the indented form used on disk.
func encodeSnapshot(snap *Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("encode snapshot: nil document")
	}
	return json.MarshalIndent(snap, "", "  ")
}

// decodeSnapshot parses a stored document.  Any decode failure, and a
// document whose counters would reuse identifiers, is reported as
// ErrCorrupt.
func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if snap.Pitches == nil {
		snap.Pitches = []model.Pitch{}
	}
	if snap.Bookings == nil {
		snap.Bookings = []model.Booking{}
	}
	for _, p := range snap.Pitches {
		if p.ID >= snap.NextPitchID {
			return nil, fmt.Errorf("%w: pitch id %d not below nextPitchId %d", ErrCorrupt, p.ID, snap.NextPitchID)
		}
	}
	for _, b := range snap.Bookings {
		if b.ID >= snap.NextBookingID {
			return nil, fmt.Errorf("%w: booking id %d not below nextBookingId %d", ErrCorrupt, b.ID, snap.NextBookingID)
		}
	}
	return &snap, nil
}

// storedVersion reads the version of an encoded document.  Data that Load
// would reject as corrupt, and no data at all, is version 0.
func storedVersion(data []byte) int64 {
	if len(data) == 0 {
		return 0
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return 0
	}
	return snap.Version
}
