package wsclient

import (
	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

func NewClient(actor string, c *websocket.Conn) *WsClient {
	return &WsClient{
		conn:  c,
		actor: actor,
	}
}

// WsClient drains the inbound side of an event feed connection. The feed is server to client,
// so incoming frames are only logged.
type WsClient struct {
	conn  *websocket.Conn
	actor string
}

var closeCodes []int

func init() {
	for i := websocket.CloseNormalClosure; i <= websocket.CloseTLSHandshake; i++ {
		closeCodes = append(closeCodes, i)
	}
}

// Dispatch blocks until the client goes away.
func (c *WsClient) Dispatch() {
	logger := log.WithField("actor", c.actor)
	for {
		if c.conn == nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, closeCodes...) {
				logger.WithError(err).Warn("event feed connection lost")
			}
			return
		}
		logger.WithField("size", len(data)).Debug("ignored client message")
	}
}
