package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore tracks live refresh tokens by jti. Consume removes the session
// so each refresh token can be exchanged once.
type SessionStore interface {
	Save(ctx context.Context, jti string, userID int64, ttl time.Duration) error
	Consume(ctx context.Context, jti string) (int64, error)
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func sessionKey(jti string) string {
	return fmt.Sprintf("refresh-session:%s", jti)
}

func (s *redisSessionStore) Save(ctx context.Context, jti string, userID int64, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(jti), userID, ttl).Err(); err != nil {
		return fmt.Errorf("could not store session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Consume(ctx context.Context, jti string) (int64, error) {
	val, err := s.rdb.GetDel(ctx, sessionKey(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("could not read session: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", jti, err)
	}
	return userID, nil
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// memorySessionStore is used when no Redis address is configured. Sessions do
// not survive a restart.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *memorySessionStore) Save(_ context.Context, jti string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.sessions {
		if now.After(v.expiresAt) {
			delete(s.sessions, k)
		}
	}
	s.sessions[jti] = memorySession{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (s *memorySessionStore) Consume(_ context.Context, jti string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[jti]
	if !ok {
		return 0, ErrSessionNotFound
	}
	delete(s.sessions, jti)
	if s.now().After(session.expiresAt) {
		return 0, ErrSessionNotFound
	}
	return session.userID, nil
}
