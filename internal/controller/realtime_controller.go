package controller

import (
	"os"

	"studysync-be/internal/pkg/logger"
	internalWS "studysync-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IRealtimeController interface {
	RegisterRoutes(r fiber.Router)
	ServeWs(ctx *fiber.Ctx) error
}

type realtimeController struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewRealtimeController(hub *internalWS.Hub, log logger.ILogger) IRealtimeController {
	return &realtimeController{
		hub:    hub,
		logger: log,
	}
}

func (c *realtimeController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", c.ServeWs)
}

// ServeWs authenticates the handshake and upgrades the connection. Browsers
// cannot set headers on websocket requests, so the token may arrive as a
// query param too.
func (c *realtimeController) ServeWs(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.logger.Warn("RealtimeController", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("RealtimeController", "Starting websocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(c.hub, conn, userID)
			c.logger.Info("RealtimeController", "Websocket session ended", map[string]interface{}{"user_id": userID})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
