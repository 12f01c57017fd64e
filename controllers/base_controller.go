package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"procurement-backend/middleware"
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("error parsing request body")
		return errors.New("unable to read request data")
	}
	return nil
}

// OptionalBodyParser leaves out untouched when the request has no body.
func (c *BaseAPIController) OptionalBodyParser(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	return c.BodyParser(ctx, out)
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.
		WithField("actor", middleware.GetActor(ctx)).
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
}

func (c *BaseAPIController) GetActor(ctx *fiber.Ctx) string {
	return middleware.GetActor(ctx)
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetIDByKey(ctx, "id")
}

func (c *BaseAPIController) GetIDByKey(ctx *fiber.Ctx, key string) (string, error) {
	id := ctx.Params(key)
	if id == "" {
		return "", errors.Errorf("%s is required", key)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.Errorf("%s is not a valid id", key)
	}
	return id, nil
}

func (c *BaseAPIController) GetLevel(ctx *fiber.Ctx) (int, error) {
	level, err := strconv.Atoi(ctx.Params("level"))
	if err != nil || level < 1 || level > models.MaxApprovalLevel {
		return 0, errors.Errorf("level must be between 1 and %d", models.MaxApprovalLevel)
	}
	return level, nil
}

// SendError maps the error kind onto the status code. Unclassified errors are logged and
// answered with the generic message.
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, message string) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(models.Message(err)))
	case errors.Is(err, models.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(models.Message(err)))
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAlreadyProcessed),
		errors.Is(err, models.ErrDuplicateKey),
		errors.Is(err, models.ErrBusy):
		return ctx.Status(fiber.StatusConflict).JSON(apimodels.NewError(models.Message(err)))
	}
	logger.WithError(err).Error(message)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(message))
}
