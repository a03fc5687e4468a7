package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pitch-booking/internal/model"
)

func newTestCatalog(t *testing.T) (*Catalog, *memStore) {
	t.Helper()
	store := &memStore{}
	l, err := Open(context.Background(), store, DefaultPitches())
	require.NoError(t, err)
	return NewCatalog(l), store
}

func TestListPitchesOrderedByName(t *testing.T) {
	c, _ := newTestCatalog(t)
	pitches, err := c.ListPitches(context.Background())
	require.NoError(t, err)

	var names []string
	for _, p := range pitches {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Community Pitch", "Elite Pitch", "Main Pitch", "Training Pitch"}, names)
}

func TestListPitchesReturnsCopies(t *testing.T) {
	c, _ := newTestCatalog(t)
	pitches, err := c.ListPitches(context.Background())
	require.NoError(t, err)
	pitches[0].Name = "changed"

	again, err := c.ListPitches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Community Pitch", again[0].Name)
}

func TestGetPitch(t *testing.T) {
	c, _ := newTestCatalog(t)

	p, err := c.GetPitch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Training Pitch", p.Name)
	assert.Equal(t, 35.0, p.PricePerHour)

	_, err = c.GetPitch(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPitchNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddPitch(t *testing.T) {
	c, store := newTestCatalog(t)

	p, err := c.AddPitch(context.Background(), model.Pitch{Name: "Indoor Court", Location: "Hall B", PricePerHour: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, int64(6), store.stored().NextPitchID)

	_, err = c.AddPitch(context.Background(), model.Pitch{Name: "Free Field", PricePerHour: 0})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = c.AddPitch(context.Background(), model.Pitch{Name: "  ", PricePerHour: 10})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestLoadCatalogFile(t *testing.T) {
	t.Setenv("IMAGE_HOST", "https://cdn.example.com")
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pitches:
  - name: Riverside
    location: East Park
    price_per_hour: 30
    image_url: ${IMAGE_HOST}/riverside.jpg
  - name: Stadium
    location: North
    price_per_hour: 90
`), 0o644))

	pitches, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, pitches, 2)
	assert.Equal(t, "Riverside", pitches[0].Name)
	assert.Equal(t, "https://cdn.example.com/riverside.jpg", pitches[0].ImageURL)
	assert.Equal(t, 90.0, pitches[1].PricePerHour)
}

func TestLoadCatalogFileErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	_, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadCatalogFile(write("empty.yaml", "pitches: []\n"))
	assert.Error(t, err)

	_, err = LoadCatalogFile(write("price.yaml", "pitches:\n  - name: Cheap\n    price_per_hour: -5\n"))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	defaults, err := LoadCatalogFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPitches(), defaults)
}
