package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iliyamo/pitch-booking/internal/model"
	"github.com/iliyamo/pitch-booking/internal/repository"
)

// Catalog is the read side of the pitch list.  Pitches are only added while
// seeding; there is no update or delete.
type Catalog struct {
	ledger *Ledger
}

// NewCatalog returns a Catalog backed by l.
func NewCatalog(l *Ledger) *Catalog { return &Catalog{ledger: l} }

// ListPitches returns every pitch ordered by name using English collation.
// Pitches with equal names keep their insertion order.
func (c *Catalog) ListPitches(ctx context.Context) ([]model.Pitch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.Pitch
	c.ledger.view(func(snap *repository.Snapshot) {
		out = make([]model.Pitch, len(snap.Pitches))
		copy(out, snap.Pitches)
	})
	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

// GetPitch returns the pitch with the given id or ErrPitchNotFound.
func (c *Catalog) GetPitch(ctx context.Context, id int64) (*model.Pitch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *model.Pitch
	c.ledger.view(func(snap *repository.Snapshot) {
		if p := findPitch(snap, id); p != nil {
			cp := *p
			out = &cp
		}
	})
	if out == nil {
		return nil, ErrPitchNotFound
	}
	return out, nil
}

// AddPitch assigns the next unused identifier to p and stores it.
func (c *Catalog) AddPitch(ctx context.Context, p model.Pitch) (*model.Pitch, error) {
	if err := validatePitch(p); err != nil {
		return nil, err
	}
	var created model.Pitch
	err := c.ledger.update(ctx, func(snap *repository.Snapshot) (bool, error) {
		created = addPitch(snap, p)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func validatePitch(p model.Pitch) error {
	if strings.TrimSpace(p.Name) == "" {
		return missingField("name")
	}
	if p.PricePerHour <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func findPitch(snap *repository.Snapshot, id int64) *model.Pitch {
	for i := range snap.Pitches {
		if snap.Pitches[i].ID == id {
			return &snap.Pitches[i]
		}
	}
	return nil
}
