// Package prefs keeps small per-visitor settings: theme, vault state, liked
// markers and the remembered anonymous commenter name.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Well-known preference keys.
const (
	KeyDarkMode      = "darkMode"
	KeyVaultUnlocked = "vaultUnlocked"
	KeyAnonName      = "anonName"
)

// TTL is how long an idle visitor's preferences survive. Every write refreshes it.
const TTL = 180 * 24 * time.Hour

// LikedKey marks that the visitor has liked a post.
func LikedKey(postID uint) string {
	return "liked-" + strconv.FormatUint(uint64(postID), 10)
}

// Store reads and writes preferences for one visitor at a time.
type Store interface {
	GetString(ctx context.Context, visitorID, key string) (string, error)
	SetString(ctx context.Context, visitorID, key, value string) error
	GetBool(ctx context.Context, visitorID, key string) (bool, error)
	SetBool(ctx context.Context, visitorID, key string, value bool) error
	// MarkOnce sets key to true and reports whether this call was the one that set it.
	MarkOnce(ctx context.Context, visitorID, key string) (bool, error)
}

// New returns a Redis-backed store, or an in-memory one when rdb is nil.
func New(rdb *redis.Client) Store {
	if rdb == nil {
		return NewMemoryStore()
	}
	return NewRedisStore(rdb)
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore keeps each visitor's preferences in one Redis hash.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func visitorKey(visitorID string) string {
	return fmt.Sprintf("visitor:%s", visitorID)
}

func (s *redisStore) GetString(ctx context.Context, visitorID, key string) (string, error) {
	v, err := s.rdb.HGet(ctx, visitorKey(visitorID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read preference %s: %w", key, err)
	}
	return v, nil
}

func (s *redisStore) SetString(ctx context.Context, visitorID, key, value string) error {
	hash := visitorKey(visitorID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, hash, key, value)
	pipe.Expire(ctx, hash, TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) GetBool(ctx context.Context, visitorID, key string) (bool, error) {
	v, err := s.GetString(ctx, visitorID, key)
	if err != nil {
		return false, err
	}
	return parseBool(v), nil
}

func (s *redisStore) SetBool(ctx context.Context, visitorID, key string, value bool) error {
	return s.SetString(ctx, visitorID, key, strconv.FormatBool(value))
}

func (s *redisStore) MarkOnce(ctx context.Context, visitorID, key string) (bool, error) {
	hash := visitorKey(visitorID)
	pipe := s.rdb.TxPipeline()
	set := pipe.HSetNX(ctx, hash, key, "true")
	pipe.Expire(ctx, hash, TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("mark preference %s: %w", key, err)
	}
	return set.Val(), nil
}

// MemoryStore is the process-local fallback used when Redis is unavailable.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) GetString(_ context.Context, visitorID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[visitorID][key], nil
}

func (s *MemoryStore) SetString(_ context.Context, visitorID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(visitorID, key, value)
	return nil
}

func (s *MemoryStore) GetBool(ctx context.Context, visitorID, key string) (bool, error) {
	v, _ := s.GetString(ctx, visitorID, key)
	return parseBool(v), nil
}

func (s *MemoryStore) SetBool(ctx context.Context, visitorID, key string, value bool) error {
	return s.SetString(ctx, visitorID, key, strconv.FormatBool(value))
}

func (s *MemoryStore) MarkOnce(_ context.Context, visitorID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[visitorID][key]; ok {
		return false, nil
	}
	s.setLocked(visitorID, key, "true")
	return true, nil
}

func (s *MemoryStore) setLocked(visitorID, key, value string) {
	m, ok := s.data[visitorID]
	if !ok {
		m = make(map[string]string)
		s.data[visitorID] = m
	}
	m[key] = value
}
