package model

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_participants_session_user,priority:1"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_participants_session_user,priority:2;index"`
	Status       string    `gorm:"type:varchar(20);not null;default:'REGISTERED'"`
	RegisteredAt time.Time `gorm:"not null"`
	JoinedAt     *time.Time
}

func (Participant) TableName() string {
	return "session_participants"
}
