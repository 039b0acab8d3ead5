package vip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FlowTTL bounds how long an abandoned flow is remembered.
const FlowTTL = 30 * time.Minute

// Store keeps one flow per visitor. Load returns a closed flow when none exists.
type Store interface {
	Load(ctx context.Context, visitorID string) (*Flow, error)
	Save(ctx context.Context, visitorID string, f *Flow) error
	Delete(ctx context.Context, visitorID string) error
}

// NewStore returns a Redis-backed store, or an in-memory one when rdb is nil.
func NewStore(rdb *redis.Client) Store {
	if rdb == nil {
		return NewMemoryStore(FlowTTL)
	}
	return &redisStore{rdb: rdb, ttl: FlowTTL}
}

func flowKey(visitorID string) string {
	return fmt.Sprintf("vip:flow:%s", visitorID)
}

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s *redisStore) Load(ctx context.Context, visitorID string) (*Flow, error) {
	raw, err := s.rdb.Get(ctx, flowKey(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewFlow(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load vip flow: %w", err)
	}
	var f Flow
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode vip flow: %w", err)
	}
	return &f, nil
}

func (s *redisStore) Save(ctx context.Context, visitorID string, f *Flow) error {
	if f.Step == StepClosed {
		return s.Delete(ctx, visitorID)
	}
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode vip flow: %w", err)
	}
	if err := s.rdb.Set(ctx, flowKey(visitorID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save vip flow: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, visitorID string) error {
	if err := s.rdb.Del(ctx, flowKey(visitorID)).Err(); err != nil {
		return fmt.Errorf("delete vip flow: %w", err)
	}
	return nil
}

type memoryEntry struct {
	flow    Flow
	expires time.Time
}

// MemoryStore keeps flows in process memory with the same expiry as Redis.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	flows map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, flows: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, visitorID string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.flows[visitorID]
	if !ok || s.now().After(e.expires) {
		delete(s.flows, visitorID)
		return NewFlow(), nil
	}
	f := e.flow
	return &f, nil
}

func (s *MemoryStore) Save(_ context.Context, visitorID string, f *Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Step == StepClosed {
		delete(s.flows, visitorID)
		return nil
	}
	s.flows[visitorID] = memoryEntry{flow: *f, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, visitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, visitorID)
	return nil
}
