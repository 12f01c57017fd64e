package connectionhub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	dbmodels "procurement-backend/models/db"
	wsmodels "procurement-backend/models/ws"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []wsmodels.ServerMessage
	closed bool
	block  chan struct{}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, v.(wsmodels.ServerMessage))
	return nil
}

func (f *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() []wsmodels.ServerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wsmodels.ServerMessage{}, f.sent...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestHub(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entry := dbmodels.NewAuditEntry("anna@example.com", now, dbmodels.DeletedPayload{})

	t.Run("broadcast check", func(t *testing.T) {
		hub := New()
		first, second := &fakeConn{}, &fakeConn{}
		hub.AddClient("s-1", "anna@example.com", first)
		hub.AddClient("s-2", "boris@example.com", second)
		require.Equal(t, 2, hub.Count())

		require.NoError(t, hub.Publish(context.Background(), "pr-1", "PR-2025-000001", []dbmodels.AuditEntry{entry}))
		for _, conn := range []*fakeConn{first, second} {
			require.Eventually(t, func() bool { return len(conn.messages()) == 1 }, time.Second, 5*time.Millisecond)
			msg := conn.messages()[0]
			require.Equal(t, "PR-2025-000001", msg.PRNumber)
			require.Equal(t, string(dbmodels.AuditDeleted), msg.Code)
			require.Equal(t, "2025-03-10T12:00:00Z", msg.Time)
		}
	})
	t.Run("delete closes the connection check", func(t *testing.T) {
		hub := New()
		conn := &fakeConn{}
		hub.AddClient("s-1", "anna@example.com", conn)
		hub.DeleteClient("s-1")
		require.Equal(t, 0, hub.Count())
		require.Eventually(t, conn.isClosed, time.Second, 5*time.Millisecond)
	})
	t.Run("slow client does not block check", func(t *testing.T) {
		hub := New()
		conn := &fakeConn{block: make(chan struct{})}
		hub.AddClient("s-1", "anna@example.com", conn)
		events := make([]dbmodels.AuditEntry, sendBuffer+5)
		for n := range events {
			events[n] = entry
		}
		done := make(chan struct{})
		go func() {
			_ = hub.Publish(context.Background(), "pr-1", "PR-2025-000001", events)
			close(done)
		}()
		require.Eventually(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)
		close(conn.block)
		hub.Close()
	})
}
