package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	apimodels "procurement-backend/models/api"
)

type errNotification struct {
	Code      int    `json:"code"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Actor     string `json:"actor,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// ErrNotify posts every 5xx response to the webhook at addr. Delivery is best effort.
func ErrNotify(addr string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		statusCode := c.Response().StatusCode()
		if statusCode < http.StatusInternalServerError {
			return err
		}
		var data apimodels.Response
		if unmErr := json.Unmarshal(c.Response().Body(), &data); unmErr != nil || data.Message == "" {
			data.Message = string(c.Response().Body())
		}
		path := c.OriginalURL()
		if r := c.Route(); r != nil {
			path = r.Path
		}
		payload, _ := json.Marshal(errNotification{
			Code:      statusCode,
			Method:    c.Method(),
			Path:      path,
			Actor:     GetActor(c),
			RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
			Error:     data.Message,
		})
		go send(addr, payload)
		return err
	}
}

func send(addr string, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(payload))
	if err != nil {
		log.WithError(err).Warn("error building error notification")
		return
	}
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("error sending error notification")
		return
	}
	_ = resp.Body.Close()
}
