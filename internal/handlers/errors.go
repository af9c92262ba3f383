package handlers

import (
	"errors"

	apperrors "wavvly/pkg/errors"
	"wavvly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler turns every error returned by a handler or middleware into
// the JSON error body. Outside production the cause is included, and for
// server errors the stack recorded where the error was raised.
func ErrorHandler(production bool) fiber.ErrorHandler {
	log := logger.Named("http")
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		body := fiber.Map{"message": "Server error"}

		var stack []byte
		var fiberErr *fiber.Error
		if appErr, ok := apperrors.AsAppError(err); ok {
			stack = appErr.Stack
			status = appErr.StatusCode()
			if status != fiber.StatusInternalServerError {
				body["message"] = appErr.Message
			}
			if len(appErr.Fields) > 0 {
				body["errors"] = appErr.Fields
			}
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			body["message"] = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if !production {
			body["error"] = err.Error()
			if status >= fiber.StatusInternalServerError && len(stack) > 0 {
				body["stack"] = string(stack)
			}
		}
		return c.Status(status).JSON(body)
	}
}
