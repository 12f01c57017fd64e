package connectionhub

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
	wsmodels "procurement-backend/models/ws"
)

const sendBuffer = 32

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

type clientSession struct {
	actor  string
	conn   Conn
	sendCh chan wsmodels.ServerMessage
	ctx    context.Context
	stop   func()
}

func newSession(actor string, conn Conn) clientSession {
	ctx, cancelFn := context.WithCancel(context.Background())
	sess := clientSession{
		actor:  actor,
		conn:   conn,
		sendCh: make(chan wsmodels.ServerMessage, sendBuffer),
		ctx:    ctx,
		stop:   cancelFn,
	}
	go sess.startSend()
	return sess
}

func (s clientSession) offer(msg wsmodels.ServerMessage) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.sendCh <- msg:
		return true
	default:
		return false
	}
}

func (s clientSession) startSend() {
	logger := log.WithField("actor", s.actor)
	for {
		select {
		case <-s.ctx.Done():
			s.close()
			return
		case msg := <-s.sendCh:
			if err := s.conn.WriteJSON(msg); err != nil {
				logger.WithError(err).Warn("error sending event feed message")
			}
		}
	}
}

func (s clientSession) close() {
	err := s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	if err != nil {
		log.WithField("actor", s.actor).WithError(err).Debug("event feed connection already closed")
	}
}
