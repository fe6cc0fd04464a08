package controller

import (
	"studysync-be/internal/dto"
	"studysync-be/internal/pkg/serverutils"
	"studysync-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	UnreadSummary(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Pinned(ctx *fiber.Ctx) error
	Pin(ctx *fiber.Ctx) error
	Unpin(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("unread", c.UnreadSummary)
	h.Post("group/:id/message", c.Send)
	h.Post("group/:id/read", c.MarkRead)
	h.Get("group/:id/history", c.History)
	h.Get("group/:id/pins", c.Pinned)
	h.Post("message/:id/pin", c.Pin)
	h.Delete("message/:id/pin", c.Unpin)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	groupId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Send(ctx.Context(), groupId, userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) MarkRead(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	groupId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.chatService.MarkGroupRead(ctx.Context(), userId, groupId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success mark group read", res))
}

func (c *chatController) UnreadSummary(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.UnreadSummary(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get unread summary", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	groupId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.HistoryRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.History(ctx.Context(), groupId, userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) Pinned(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	groupId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.chatService.PinnedMessages(ctx.Context(), groupId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get pinned messages", res))
}

func (c *chatController) Pin(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	messageId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.chatService.Pin(ctx.Context(), messageId, userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success pin message", nil))
}

func (c *chatController) Unpin(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	messageId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.chatService.Unpin(ctx.Context(), messageId, userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success unpin message", nil))
}
