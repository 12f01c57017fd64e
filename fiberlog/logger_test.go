package fiberlog

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(New(Config{Logger: logger, Tags: []string{TagStatus, TagMethod, TagPath, TagActor, TagResBody}}))
	app.Get("/ok", func(ctx *fiber.Ctx) error {
		ctx.Locals("actor", "anna@example.com")
		return ctx.JSON(fiber.Map{"status": "success"})
	})
	app.Get("/file", func(ctx *fiber.Ctx) error {
		ctx.Set(fiber.HeaderContentType, "application/pdf")
		return ctx.Status(fiber.StatusNotFound).Send([]byte("%PDF-"))
	})

	t.Run("info line check", func(t *testing.T) {
		_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
		require.NoError(t, err)
		entry := hook.LastEntry()
		require.Equal(t, log.InfoLevel, entry.Level)
		require.Equal(t, "api request", entry.Message)
		require.Equal(t, 200, entry.Data[TagStatus])
		require.Equal(t, "/ok", entry.Data[TagPath])
		require.Equal(t, "anna@example.com", entry.Data[TagActor])
		require.Equal(t, `{"status":"success"}`, entry.Data[TagResBody])
	})
	t.Run("binary body skipped check", func(t *testing.T) {
		_, err := app.Test(httptest.NewRequest("GET", "/file", nil))
		require.NoError(t, err)
		entry := hook.LastEntry()
		require.Equal(t, log.WarnLevel, entry.Level)
		_, ok := entry.Data[TagResBody]
		require.False(t, ok)
	})
}
