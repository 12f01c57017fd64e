package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithDelay(t *testing.T) {
	t.Run("serialises same key check", func(t *testing.T) {
		var inside, maxInside int32
		wg := sync.WaitGroup{}
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := WithDelay(context.Background(), "pr-1", time.Second, func() error {
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt32(&inside, -1)
					return nil
				})
				require.NoError(t, err)
				require.True(t, ok)
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), maxInside)
		mu.Lock()
		require.Empty(t, slots)
		mu.Unlock()
	})
	t.Run("timeout check", func(t *testing.T) {
		held := make(chan struct{})
		done := make(chan struct{})
		go func() {
			_, _ = WithDelay(context.Background(), "pr-2", time.Second, func() error {
				close(held)
				<-done
				return nil
			})
		}()
		<-held
		called := false
		ok, err := WithDelay(context.Background(), "pr-2", 20*time.Millisecond, func() error {
			called = true
			return nil
		})
		close(done)
		require.NoError(t, err)
		require.False(t, ok)
		require.False(t, called)
	})
	t.Run("other keys do not wait check", func(t *testing.T) {
		ok, err := WithDelay(context.Background(), "pr-3", time.Second, func() error {
			inner, err := WithDelay(context.Background(), "pr-4", 10*time.Millisecond, func() error { return nil })
			require.True(t, inner)
			return err
		})
		require.NoError(t, err)
		require.True(t, ok)
	})
}
