package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the ledger as a single string value in Redis.  Several
// server instances may share one key; SaveIf guards each write with
// WATCH/MULTI on the key.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore returns a RedisStore that reads and writes key.  An empty
// key falls back to "pitch-booking:ledger".
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "pitch-booking:ledger"
	}
	return &RedisStore{rdb: rdb, key: key}
}

// Load fetches the document.  A missing key yields ErrNoDocument.
func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decodeSnapshot(data)
}

// Save overwrites the document.  No expiry is set.
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// SaveIf writes snap inside a WATCH on the key, provided the stored
// document still has version prev.  A concurrent write between the check
// and EXEC aborts the transaction and is reported as ErrStale.
func (s *RedisStore) SaveIf(ctx context.Context, snap *Snapshot, prev int64) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, s.key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			cur = nil
		case err != nil:
			return fmt.Errorf("redis get %s: %w", s.key, err)
		}
		if storedVersion(cur) != prev {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}, s.key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	}
	return fmt.Errorf("redis save %s: %w", s.key, err)
}
