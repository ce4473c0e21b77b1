package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinebook/internal/model"
)

// ErrNoSession is returned when no cached user row exists.
var ErrNoSession = errors.New("no session")

// SessionStore caches the signed-in user's row, one entry per user. The
// profile screen overwrites it after every reload or edit and logout
// removes it.
type SessionStore interface {
	Get(ctx context.Context, userID uint64) (model.SessionUser, error)
	Put(ctx context.Context, u model.SessionUser) error
	Delete(ctx context.Context, userID uint64) error
}

// NewSessionStore returns a Redis backed store, or an in-process one when
// rdb is nil.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) SessionStore {
	if rdb == nil {
		return NewMemorySessionStore(ttl)
	}
	return NewRedisSessionStore(rdb, ttl)
}

// SessionKey is the cache key of a user's session entry.
func SessionKey(userID uint64) string {
	return "session:user:" + strconv.FormatUint(userID, 10)
}

// RedisSessionStore keeps JSON encoded rows under SessionKey.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, userID uint64) (model.SessionUser, error) {
	var u model.SessionUser
	bs, err := s.rdb.Get(ctx, SessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return u, ErrNoSession
	}
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(bs, &u); err != nil {
		// A corrupt entry behaves like a missing one; the next reload
		// overwrites it.
		return u, ErrNoSession
	}
	return u, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, u model.SessionUser) error {
	bs, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, SessionKey(u.ID), bs, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, SessionKey(userID)).Err()
}

type memoryEntry struct {
	user    model.SessionUser
	expires time.Time
}

// MemorySessionStore is the fallback used when Redis is unavailable. Entries
// live only as long as the process.
type MemorySessionStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[uint64]memoryEntry
	now func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, m: make(map[uint64]memoryEntry), now: time.Now}
}

func (s *MemorySessionStore) Get(_ context.Context, userID uint64) (model.SessionUser, error) {
	s.mu.RLock()
	e, ok := s.m[userID]
	s.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && s.now().After(e.expires)) {
		return model.SessionUser{}, ErrNoSession
	}
	return e.user, nil
}

func (s *MemorySessionStore) Put(_ context.Context, u model.SessionUser) error {
	e := memoryEntry{user: u}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.m[u.ID] = e
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID uint64) error {
	s.mu.Lock()
	delete(s.m, userID)
	s.mu.Unlock()
	return nil
}
