package authutils

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func actorOf(t *testing.T, claims jwt.MapClaims) string {
	app := fiber.New()
	app.Get("/", func(ctx *fiber.Ctx) error {
		if claims != nil {
			ctx.Locals("user", &jwt.Token{Claims: claims})
		}
		return ctx.SendString(GetActor(ctx))
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestGetActor(t *testing.T) {
	t.Run("email claim check", func(t *testing.T) {
		require.Equal(t, "anna@example.com", actorOf(t, jwt.MapClaims{"email": " Anna@Example.com", "sub": "u-1"}))
	})
	t.Run("subject fallback check", func(t *testing.T) {
		require.Equal(t, "u-1", actorOf(t, jwt.MapClaims{"sub": "u-1"}))
	})
	t.Run("no token check", func(t *testing.T) {
		require.Equal(t, "", actorOf(t, nil))
	})
}

func TestGetToken(t *testing.T) {
	t.Run("signed claims check", func(t *testing.T) {
		now := time.Now()
		signed, err := GetToken("secret", "u-1", "anna@example.com", "Anna", time.Hour, now)
		require.NoError(t, err)
		claims := jwt.MapClaims{}
		_, err = jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("secret"), nil
		})
		require.NoError(t, err)
		require.Equal(t, "anna@example.com", claims["email"])
		require.Equal(t, "u-1", claims["sub"])
	})
}
