package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matchdayhq/matchday/internal/platform/resilience"
)

type item struct {
	value    any
	deadline time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.deadline.IsZero() && !i.deadline.After(now)
}

// Store is an in-process TTL cache. Concurrent loads for the same key are
// collapsed into one loader call.
type Store struct {
	mu     sync.RWMutex
	items  map[string]item
	ttl    time.Duration
	flight resilience.SingleFlight
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]item),
		ttl:   ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	i, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if i.expired(now) {
		s.mu.Lock()
		if current, still := s.items[key]; still && current.expired(now) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return i.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	i := item{value: value}
	if s.ttl > 0 {
		i.deadline = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[key] = i
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or runs loader once for all concurrent
// callers of the same key, caching a successful result. Errors are not
// cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		// A follower may arrive after the leader stored the value.
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
