package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"procurement-backend/config"
	authutils "procurement-backend/lib/utils/auth-utils"
	apimodels "procurement-backend/models/api"
)

const actorKey = "actor"

func AuthorizationRequired() fiber.Handler {
	return Authorization(config.Conf.Auth.JWTSecret)
}

func Authorization(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Claims: jwt.MapClaims{},
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS256",
			Key:    []byte(secret),
		},
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("invalid or missing token"))
		},
	})
}

// ActorRequired rejects tokens that name nobody. There is no anonymous actor.
func ActorRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		actor := authutils.GetActor(ctx)
		if actor == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("token does not identify the caller"))
		}
		ctx.Locals(actorKey, actor)
		return ctx.Next()
	}
}

func GetActor(ctx *fiber.Ctx) string {
	actor, _ := ctx.Locals(actorKey).(string)
	return actor
}
