package dto

import (
	"time"

	"github.com/google/uuid"
)

type MeetingAuthResponse struct {
	SessionId  uuid.UUID `json:"session_id"`
	RoomName   string    `json:"room_name"`
	MeetingUrl string    `json:"meeting_url"`
	Token      string    `json:"token"`
	Moderator  bool      `json:"moderator"`
	ExpiresAt  time.Time `json:"expires_at"`
}
