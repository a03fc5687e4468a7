package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()
	s := NewRedisStore(rdb, "")

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNoDocument)

	require.NoError(t, s.Save(ctx, sampleSnapshot()))
	assert.True(t, mr.Exists("pitch-booking:ledger"))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)

	require.NoError(t, mr.Set("pitch-booking:ledger", "garbage"))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	s := NewRedisStore(rdb, "ledger")
	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDocument)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestRedisStoreSaveIf(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()
	s := NewRedisStore(rdb, "ledger")

	first := sampleSnapshot()
	first.Version = 1
	require.NoError(t, s.SaveIf(ctx, first, 0))

	// A second writer still holding version 0 must not overwrite.
	other := sampleSnapshot()
	other.Version = 1
	other.Bookings = nil
	assert.ErrorIs(t, s.SaveIf(ctx, other, 0), ErrStale)

	next := first.Clone()
	next.Version = 2
	require.NoError(t, s.SaveIf(ctx, next, 1))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Len(t, got.Bookings, 1)
}

func TestRedisStoreSaveIfOverwritesCorrupt(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, mr.Set("ledger", "garbage"))

	snap := sampleSnapshot()
	snap.Version = 1
	require.NoError(t, NewRedisStore(rdb, "ledger").SaveIf(context.Background(), snap, 0))
}
