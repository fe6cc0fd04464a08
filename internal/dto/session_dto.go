package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Type            string     `json:"type" validate:"required,oneof=ONE_ON_ONE GROUP ASYNC_QA"`
	ScheduledStart  time.Time  `json:"scheduled_start" validate:"required"`
	ScheduledEnd    time.Time  `json:"scheduled_end" validate:"required"`
	MaxParticipants int        `json:"max_participants" validate:"required,min=1"`
	StudentId       *uuid.UUID `json:"student_id,omitempty"`
	GroupId         *uuid.UUID `json:"group_id,omitempty"`
	CourseId        *uuid.UUID `json:"course_id,omitempty"`
}

type SessionResponse struct {
	Id                  uuid.UUID  `json:"id"`
	OwnerId             uuid.UUID  `json:"owner_id"`
	StudentId           *uuid.UUID `json:"student_id,omitempty"`
	GroupId             *uuid.UUID `json:"group_id,omitempty"`
	CourseId            *uuid.UUID `json:"course_id,omitempty"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	Title               string     `json:"title"`
	ScheduledStart      time.Time  `json:"scheduled_start"`
	ScheduledEnd        time.Time  `json:"scheduled_end"`
	ActualStart         *time.Time `json:"actual_start,omitempty"`
	ActualEnd           *time.Time `json:"actual_end,omitempty"`
	Summary             *string    `json:"summary,omitempty"`
	MaxParticipants     int        `json:"max_participants"`
	CurrentParticipants int        `json:"current_participants"`
	CancelReason        *string    `json:"cancel_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type CompleteSessionRequest struct {
	Summary *string `json:"summary,omitempty" validate:"omitempty,max=4000"`
}

type CancelSessionRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type CanEnterRoomResponse struct {
	CanEnter bool      `json:"can_enter"`
	Status   string    `json:"status"`
	Now      time.Time `json:"now"`
}
