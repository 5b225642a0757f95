package middleware

import (
	"errors"

	"bookheaven/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler maps errors returned by handlers to JSON responses:
// validation failures become 400 with per-field messages, unknown ids 404.
// Anything else is logged and answered with a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			body := fiber.Map{"message": ve.Message}
			if len(ve.Fields) > 0 {
				body["errors"] = ve.Fields
			}
			return c.Status(fiber.StatusBadRequest).JSON(body)
		}

		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nf.Error()})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code >= fiber.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
