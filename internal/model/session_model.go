package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id                  uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId             uuid.UUID  `gorm:"type:uuid;not null;index:idx_sessions_owner_window,priority:1"`
	StudentId           *uuid.UUID `gorm:"type:uuid"`
	GroupId             *uuid.UUID `gorm:"type:uuid;index"`
	CourseId            *uuid.UUID `gorm:"type:uuid"`
	Type                string     `gorm:"type:varchar(20);not null"`
	Status              string     `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	Title               string     `gorm:"type:varchar(200);not null"`
	ScheduledStart      time.Time  `gorm:"not null;index:idx_sessions_owner_window,priority:2"`
	ScheduledEnd        time.Time  `gorm:"not null"`
	ActualStart         *time.Time
	ActualEnd           *time.Time
	Summary             *string    `gorm:"type:text"`
	MaxParticipants     int        `gorm:"not null;default:1"`
	CurrentParticipants int        `gorm:"not null;default:0"`
	CancelReason        *string    `gorm:"type:text"`
	CancelledBy         *uuid.UUID `gorm:"type:uuid"`
	Version             int        `gorm:"not null;default:0"`
	CreatedAt           time.Time  `gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
