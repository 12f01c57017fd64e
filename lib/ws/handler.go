package ws

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	wsclient "procurement-backend/lib/ws/client"
	connectionhub "procurement-backend/lib/ws/hub/connection-hub"
	"procurement-backend/middleware"
	apimodels "procurement-backend/models/api"
)

const actorKey = "wsActor"

func InitWs(app *fiber.App) {
	app.Use("ws", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Status(fiber.StatusUpgradeRequired).JSON(apimodels.NewError("websocket upgrade required"))
		}
		ctx.Locals(actorKey, middleware.GetActor(ctx))
		return ctx.Next()
	})
	app.Get("ws/events", websocket.New(eventsHandler))
}

// @Summary Workflow event feed
// @Tags Websocket
// @Description Pushes every purchase request workflow event as it is committed
// @Param   Authorization		header		string		true		"Authorization token"
// @Success 101 {object} wsmodels.ServerMessage
// @Failure 401
// @Failure 426
// @router /api/v1/ws/events [get]
func eventsHandler(c *websocket.Conn) {
	actor, _ := c.Locals(actorKey).(string)
	sessionID := uuid.NewString()
	connectionhub.Instance.AddClient(sessionID, actor, c)
	defer connectionhub.Instance.DeleteClient(sessionID)
	wsclient.NewClient(actor, c).Dispatch()
}
