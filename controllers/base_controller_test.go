package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
)

func TestSendError(t *testing.T) {
	c := BaseAPIController{}
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation check", models.ValidationErrorf("missing required fields: title"), 400, "missing required fields: title"},
		{"not found check", models.NotFoundErrorf("purchase request x"), 404, "purchase request x"},
		{"transition check", models.InvalidTransitionErrorf("Cannot delete approved PR"), 409, "Cannot delete approved PR"},
		{"processed check", models.AlreadyProcessedErrorf("approval level 1 is Approved"), 409, "approval level 1 is Approved"},
		{"busy check", models.BusyErrorf("locked"), 409, "locked"},
		{"internal check", errors.New("connection refused"), 500, "error reading purchase request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(ctx *fiber.Ctx) error {
				return c.SendError(ctx, c.GetLogger(ctx), tc.err, "error reading purchase request")
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			require.Equal(t, tc.code, resp.StatusCode)
			body := apimodels.Response{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, "fail", body.Status)
			require.Equal(t, tc.message, body.Message)
		})
	}
}

func TestParams(t *testing.T) {
	c := BaseAPIController{}
	app := fiber.New()
	app.Get("/:id/approvals/:level", func(ctx *fiber.Ctx) error {
		if _, err := c.GetID(ctx); err != nil {
			return ctx.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		if _, err := c.GetLevel(ctx); err != nil {
			return ctx.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return ctx.SendStatus(fiber.StatusOK)
	})
	t.Run("valid params check", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/0b6c1c1e-4b8b-4a3c-9f77-2b1d6f1a0c11/approvals/2", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
	t.Run("bad id check", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/abc/approvals/2", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
	t.Run("bad level check", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/0b6c1c1e-4b8b-4a3c-9f77-2b1d6f1a0c11/approvals/11", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
