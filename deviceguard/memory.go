package deviceguard

import (
	"context"
	"sync"
)

// MemoryCache is an in-process Cache. Each instance stands for one browser.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.data[key]
	return value, ok
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

// MemoryNotes keeps notes until Pop reads them.
type MemoryNotes struct {
	mu    sync.Mutex
	notes map[string]string
}

func NewMemoryNotes() *MemoryNotes {
	return &MemoryNotes{notes: make(map[string]string)}
}

func (n *MemoryNotes) Put(_ context.Context, key, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notes[key] = value
	return nil
}

func (n *MemoryNotes) Pop(key string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	value, ok := n.notes[key]
	delete(n.notes, key)
	return value, ok
}

// MemoryRecordStore keeps Session Records in a map.
type MemoryRecordStore struct {
	mu     sync.RWMutex
	tokens map[string]*string
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{tokens: make(map[string]*string)}
}

func (s *MemoryRecordStore) GetActiveDeviceToken(_ context.Context, accountID string) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[accountID]
	if !ok || token == nil {
		return nil, nil
	}
	value := *token
	return &value, nil
}

func (s *MemoryRecordStore) SetActiveDeviceToken(_ context.Context, accountID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := token
	s.tokens[accountID] = &value
	return nil
}

func (s *MemoryRecordStore) ClearActiveDeviceToken(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[accountID] = nil
	return nil
}
