package dto

import (
	"time"

	"github.com/google/uuid"
)

// Wire payloads published on broadcast topics. Topics are scoped strings:
// group/{id} for group chat, session/{id}/{chat|whiteboard|participants|status}
// for live sessions.

type ChatEventPayload struct {
	Id         uuid.UUID  `json:"id"`
	GroupId    *uuid.UUID `json:"group_id,omitempty"`
	SessionId  *uuid.UUID `json:"session_id,omitempty"`
	SenderId   uuid.UUID  `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	Content    string     `json:"content"`
	Type       string     `json:"type"`
	Timestamp  time.Time  `json:"timestamp"`
}

type ParticipantEventPayload struct {
	Type        string               `json:"type"` // "join" or "leave"
	Participant ParticipantEventUser `json:"participant"`
	Timestamp   time.Time            `json:"timestamp"`
}

type ParticipantEventUser struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

type StatusEventPayload struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// WhiteboardEventPayload is relayed between connected clients only; strokes
// are never persisted.
type WhiteboardEventPayload struct {
	SessionId uuid.UUID              `json:"session_id"`
	UserId    uuid.UUID              `json:"user_id"`
	Action    string                 `json:"action"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
