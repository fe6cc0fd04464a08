package controller

import (
	"studysync-be/internal/apperror"
	"studysync-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserID reads the authenticated user from the JWT middleware locals.
func currentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}

func isAdmin(ctx *fiber.Ctx) bool {
	role, _ := ctx.Locals("role").(string)
	return role == string(entity.UserRoleAdmin)
}

func paramUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.NewValidation("invalid %s: %q", name, ctx.Params(name))
	}
	return id, nil
}
