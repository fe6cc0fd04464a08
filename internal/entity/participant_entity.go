package entity

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	ParticipantStatusRegistered ParticipantStatus = "REGISTERED"
	ParticipantStatusConfirmed  ParticipantStatus = "CONFIRMED"
	ParticipantStatusAttended   ParticipantStatus = "ATTENDED"
)

// Participant is a (session, user) enrollment row. Its lifecycle is owned by
// the session: created on join, removed on leave.
type Participant struct {
	Id           uuid.UUID
	SessionId    uuid.UUID
	UserId       uuid.UUID
	Status       ParticipantStatus
	RegisteredAt time.Time
	JoinedAt     *time.Time
}
