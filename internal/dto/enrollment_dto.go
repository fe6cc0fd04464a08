package dto

import (
	"time"

	"github.com/google/uuid"
)

type JoinSessionResponse struct {
	ParticipantId       uuid.UUID `json:"participant_id"`
	SessionId           uuid.UUID `json:"session_id"`
	Status              string    `json:"status"`
	CurrentParticipants int       `json:"current_participants"`
	MaxParticipants     int       `json:"max_participants"`
}

type RosterEntry struct {
	ParticipantId uuid.UUID  `json:"participant_id"`
	UserId        uuid.UUID  `json:"user_id"`
	FullName      string     `json:"full_name"`
	Status        string     `json:"status"`
	Online        bool       `json:"online"`
	RegisteredAt  time.Time  `json:"registered_at"`
	JoinedAt      *time.Time `json:"joined_at,omitempty"`
}

type RosterResponse struct {
	SessionId    uuid.UUID      `json:"session_id"`
	OnlineCount  int            `json:"online_count"`
	Participants []*RosterEntry `json:"participants"`
}
