// Package idempotency records Idempotency-Key headers of order placement
// requests so a retried request returns the order it already created.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type State int

const (
	// Started means the caller now owns the key and must Complete or Release it.
	Started State = iota
	// InFlight means another request holds the key and has not finished.
	InFlight
	// Completed means the key already produced an order.
	Completed
)

const pendingMarker = "pending"

type Store interface {
	Begin(ctx context.Context, key string) (State, int64, error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}

// Key scopes a client supplied key to one user.
func Key(userID int64, clientKey string) string {
	return fmt.Sprintf("idempotent-key:%d:%s", userID, clientKey)
}

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func (s *redisStore) Begin(ctx context.Context, key string) (State, int64, error) {
	claimed, err := s.rdb.SetNX(ctx, key, pendingMarker, s.ttl).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("could not claim idempotency key: %w", err)
	}
	if claimed {
		return Started, 0, nil
	}

	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		return s.Begin(ctx, key)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("could not read idempotency key: %w", err)
	}
	return parseValue(val)
}

func (s *redisStore) Complete(ctx context.Context, key string, orderID int64) error {
	if err := s.rdb.Set(ctx, key, orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("could not complete idempotency key: %w", err)
	}
	return nil
}

func (s *redisStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("could not release idempotency key: %w", err)
	}
	return nil
}

func parseValue(val string) (State, int64, error) {
	if val == pendingMarker {
		return InFlight, 0, nil
	}
	orderID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("corrupt idempotency value %q: %w", val, err)
	}
	return Completed, orderID, nil
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memoryStore) Begin(_ context.Context, key string) (State, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, k)
		}
	}
	if entry, ok := s.entries[key]; ok {
		return parseValue(entry.value)
	}
	s.entries[key] = memoryEntry{value: pendingMarker, expiresAt: now.Add(s.ttl)}
	return Started, 0, nil
}

func (s *memoryStore) Complete(_ context.Context, key string, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: strconv.FormatInt(orderID, 10), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *memoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
