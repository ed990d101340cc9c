package deviceguard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	ids        chan Identity
	signOuts   atomic.Int32
	signOutErr error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{ids: make(chan Identity, 8)}
}

func (a *fakeAuth) Identities() <-chan Identity {
	return a.ids
}

func (a *fakeAuth) SignOut(context.Context) error {
	a.signOuts.Add(1)
	return a.signOutErr
}

// scriptedRecords wraps the memory store and fails or lags on chosen reads.
type scriptedRecords struct {
	*MemoryRecordStore

	mu     sync.Mutex
	gets   int
	failOn map[int]error
	stale  map[int]*string
	setErr error
}

func newScriptedRecords() *scriptedRecords {
	return &scriptedRecords{
		MemoryRecordStore: NewMemoryRecordStore(),
		failOn:            make(map[int]error),
		stale:             make(map[int]*string),
	}
}

func (s *scriptedRecords) GetActiveDeviceToken(ctx context.Context, accountID string) (*string, error) {
	s.mu.Lock()
	s.gets++
	n := s.gets
	err := s.failOn[n]
	stale, isStale := s.stale[n]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if isStale {
		return stale, nil
	}
	return s.MemoryRecordStore.GetActiveDeviceToken(ctx, accountID)
}

func (s *scriptedRecords) SetActiveDeviceToken(ctx context.Context, accountID, token string) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryRecordStore.SetActiveDeviceToken(ctx, accountID, token)
}

func (s *scriptedRecords) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

type countingCache struct {
	*MemoryCache
	deletes atomic.Int32
}

func newCountingCache() *countingCache {
	return &countingCache{MemoryCache: NewMemoryCache()}
}

func (c *countingCache) Delete(ctx context.Context, key string) error {
	c.deletes.Add(1)
	return c.MemoryCache.Delete(ctx, key)
}

func strPtr(s string) *string {
	return &s
}

const (
	eventuallyWait = 2 * time.Second
	eventuallyTick = 2 * time.Millisecond
)

// runGuard starts g.Run in the background and stops it when the test ends.
func runGuard(t *testing.T, g *Guard) (stop func() error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	var once sync.Once
	var runErr error
	stop = func() error {
		once.Do(func() {
			cancel()
			runErr = <-done
		})
		return runErr
	}
	t.Cleanup(func() { _ = stop() })
	return stop
}

func waitForGets(t *testing.T, records *scriptedRecords, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return records.Gets() >= n }, eventuallyWait, eventuallyTick)
}
