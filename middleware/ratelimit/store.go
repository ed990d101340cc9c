package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Store counts hits per key inside a fixed window that starts on the first hit.
type Store interface {
	Get(ctx context.Context, key string) (count int, resetTime time.Time, err error)
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetTime time.Time, err error)
	Reset(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]*entry
	clock clockwork.Clock
	stop  chan struct{}
	once  sync.Once
}

type entry struct {
	count     int
	resetTime time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(clockwork.NewRealClock())
}

func NewMemoryStoreWithClock(clock clockwork.Clock) *MemoryStore {
	store := &MemoryStore{
		data:  make(map[string]*entry),
		clock: clock,
		stop:  make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *MemoryStore) Get(_ context.Context, key string) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.live(key); ok {
		return e.count, e.resetTime, nil
	}
	return 0, time.Time{}, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.live(key); ok {
		e.count++
		return e.count, e.resetTime, nil
	}

	e := &entry{count: 1, resetTime: s.clock.Now().Add(window)}
	s.data[key] = e
	return e.count, e.resetTime, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// live must be called with mu held.
func (s *MemoryStore) live(key string) (*entry, bool) {
	e, ok := s.data[key]
	if !ok || !s.clock.Now().Before(e.resetTime) {
		return nil, false
	}
	return e, true
}

func (s *MemoryStore) cleanup() {
	ticker := s.clock.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.Chan():
			s.mu.Lock()
			now := s.clock.Now()
			for key, e := range s.data {
				if !now.Before(e.resetTime) {
					delete(s.data, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
