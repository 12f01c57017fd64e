package connectionhub

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	dbmodels "procurement-backend/models/db"
	wsmodels "procurement-backend/models/ws"
)

// Provider keeps the open event feed connections. It is also a notify.Publisher so the
// workflow events reach every connected client.
type Provider interface {
	AddClient(sessionID, actor string, conn Conn)
	DeleteClient(sessionID string)
	Count() int
	Publish(ctx context.Context, prID, prNumber string, events []dbmodels.AuditEntry) error
	Close()
}

var Instance Provider

func Init() {
	Instance = New()
}

func New() Provider {
	return &impl{
		clients: map[string]clientSession{},
	}
}

type impl struct {
	mu      sync.RWMutex
	clients map[string]clientSession // map[sessionID]
}

func (i *impl) AddClient(sessionID, actor string, conn Conn) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if old, ok := i.clients[sessionID]; ok {
		old.stop()
	}
	i.clients[sessionID] = newSession(actor, conn)
}

func (i *impl) DeleteClient(sessionID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[sessionID]
	if !ok {
		return
	}
	delete(i.clients, sessionID)
	sess.stop()
}

func (i *impl) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.clients)
}

// Publish never blocks on a slow client: its message is dropped instead.
func (i *impl) Publish(ctx context.Context, prID, prNumber string, events []dbmodels.AuditEntry) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, entry := range events {
		msg := wsmodels.ServerMessage{
			Time:        entry.Timestamp.Format(time.RFC3339),
			Code:        string(entry.Action),
			PRID:        prID,
			PRNumber:    prNumber,
			PerformedBy: entry.PerformedBy,
			Msg:         entry.Details,
		}
		for sessionID, sess := range i.clients {
			if !sess.offer(msg) {
				log.
					WithField("session_id", sessionID).
					WithField("actor", sess.actor).
					Warn("event feed client is too slow, message dropped")
			}
		}
	}
	return nil
}

func (i *impl) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for sessionID, sess := range i.clients {
		sess.stop()
		delete(i.clients, sessionID)
	}
}
