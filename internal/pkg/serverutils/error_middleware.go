package serverutils

import (
	"studysync-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the domain error taxonomy onto HTTP statuses:
// Validation 400, NotFound 404, Conflict 409, Forbidden 403, State 409.
// Anything else is a 500 with a generic body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := "internal server error"

		switch {
		case apperror.IsValidation(err):
			status = fiber.StatusBadRequest
			message = err.Error()
		case apperror.IsNotFound(err):
			status = fiber.StatusNotFound
			message = err.Error()
		case apperror.IsConflict(err):
			status = fiber.StatusConflict
			message = err.Error()
		case apperror.IsForbidden(err):
			status = fiber.StatusForbidden
			message = err.Error()
		case apperror.IsState(err):
			status = fiber.StatusConflict
			message = err.Error()
		default:
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
				message = fiberErr.Message
			}
		}

		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}
