package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// UserID associated with this connection
	UserID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte
}

// controlFrame is what a connected client can say to the hub: manage its
// topic subscriptions or relay an ephemeral event.
type controlFrame struct {
	Action string          `json:"action"` // subscribe | unsubscribe | publish
	Topic  string          `json:"topic"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// readPump pumps control frames from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.Hub.refreshPresence(c)
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}

		var frame controlFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		ctx := context.Background()
		switch frame.Action {
		case "subscribe":
			if err := c.Hub.Subscribe(ctx, c, frame.Topic); err != nil {
				c.Hub.logger.Warn("Hub", "Subscribe failed", map[string]interface{}{"user_id": c.UserID, "topic": frame.Topic, "error": err.Error()})
			}
		case "unsubscribe":
			c.Hub.Unsubscribe(c, frame.Topic)
		case "publish":
			if err := c.Hub.Relay(ctx, c, frame.Topic, frame.Data); err != nil {
				c.Hub.logger.Warn("Hub", "Relay failed", map[string]interface{}{"user_id": c.UserID, "topic": frame.Topic, "error": err.Error()})
			}
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued events into the same websocket frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
