package controller

import (
	"studysync-be/internal/dto"
	"studysync-be/internal/pkg/serverutils"
	"studysync-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListMine(ctx *fiber.Ctx) error
	Start(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	CanEnter(ctx *fiber.Ctx) error
	Join(ctx *fiber.Ctx) error
	Leave(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Roster(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService    service.ISessionService
	enrollmentService service.IEnrollmentService
}

func NewSessionController(sessionService service.ISessionService, enrollmentService service.IEnrollmentService) ISessionController {
	return &sessionController{
		sessionService:    sessionService,
		enrollmentService: enrollmentService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.ListMine)
	h.Get(":id", c.Show)
	h.Post(":id/start", c.Start)
	h.Post(":id/complete", c.Complete)
	h.Post(":id/cancel", c.Cancel)
	h.Get(":id/can-enter", c.CanEnter)
	h.Post(":id/join", c.Join)
	h.Delete(":id/leave", c.Leave)
	h.Post(":id/confirm", c.Confirm)
	h.Get(":id/roster", c.Roster)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.sessionService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *sessionController) ListMine(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.ListByOwner(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.sessionService.Start(ctx.Context(), id, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success start session", res))
}

func (c *sessionController) Complete(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.CompleteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Complete(ctx.Context(), id, userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success complete session", res))
}

func (c *sessionController) Cancel(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.CancelSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Cancel(ctx.Context(), id, userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success cancel session", res))
}

func (c *sessionController) CanEnter(ctx *fiber.Ctx) error {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.sessionService.CanEnterRoom(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success check room entry", res))
}

func (c *sessionController) Join(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.enrollmentService.Join(ctx.Context(), id, userId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success join session", res))
}

func (c *sessionController) Leave(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.enrollmentService.Leave(ctx.Context(), id, userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success leave session", nil))
}

func (c *sessionController) Confirm(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.enrollmentService.Confirm(ctx.Context(), id, userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success confirm attendance", nil))
}

func (c *sessionController) Roster(ctx *fiber.Ctx) error {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.enrollmentService.Roster(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get roster", res))
}
