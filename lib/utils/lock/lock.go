package lock

import (
	"context"
	"sync"
	"time"
)

var (
	mu    sync.Mutex
	slots = map[string]*slot{}
)

// slot is a one-token semaphore shared by everyone waiting on the same key.
type slot struct {
	token   chan struct{}
	waiters int
}

func acquire(key string) *slot {
	mu.Lock()
	defer mu.Unlock()
	s, ok := slots[key]
	if !ok {
		s = &slot{token: make(chan struct{}, 1)}
		slots[key] = s
	}
	s.waiters++
	return s
}

func release(key string, s *slot) {
	mu.Lock()
	defer mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(slots, key)
	}
}

// WithDelay runs safeCode while holding the key. It gives up after wait or when ctx is done,
// returning success=false without calling safeCode.
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	s := acquire(key)
	defer release(key, s)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case s.token <- struct{}{}:
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, nil
	}
	defer func() { <-s.token }()
	return true, safeCode()
}
