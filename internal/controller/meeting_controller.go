package controller

import (
	"studysync-be/internal/pkg/serverutils"
	"studysync-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMeetingController interface {
	RegisterRoutes(r fiber.Router)
	IssueToken(ctx *fiber.Ctx) error
}

type meetingController struct {
	meetingService service.IMeetingService
}

func NewMeetingController(meetingService service.IMeetingService) IMeetingController {
	return &meetingController{
		meetingService: meetingService,
	}
}

func (c *meetingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/meeting/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session/:id/token", c.IssueToken)
}

func (c *meetingController) IssueToken(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.meetingService.Issue(ctx.Context(), sessionId, userId, isAdmin(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success issue meeting token", res))
}
