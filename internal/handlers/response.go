package handlers

import (
	"errors"

	"shopfront/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// success writes the {success: true, ...payload} envelope.
func success(c *fiber.Ctx, payload fiber.Map) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	payload["success"] = true
	return c.Status(fiber.StatusOK).JSON(payload)
}

// NewErrorHandler converts every error returned by a handler into the
// {success: false, message} envelope. Internal error details are only
// exposed when exposeInternal is set.
func NewErrorHandler(log *zap.Logger, exposeInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := internalErrorMessage

		var fiberErr *fiber.Error
		if appErr := apperror.As(err); appErr != nil {
			status = appErr.Status()
			switch {
			case appErr.Kind != apperror.KindInternal:
				message = appErr.Message
			case exposeInternal:
				message = appErr.Error()
			}
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		} else if exposeInternal {
			message = err.Error()
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

// bind parses the request body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperror.InvalidInput(err)
	}
	return nil
}
