package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionType string

const (
	SessionTypeOneOnOne SessionType = "ONE_ON_ONE"
	SessionTypeGroup    SessionType = "GROUP"
	SessionTypeAsyncQA  SessionType = "ASYNC_QA"
)

type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "SCHEDULED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
)

// Session is a scheduled, time-boxed interaction between an expert and one or
// more participants. Sessions are never deleted, only transitioned to a
// terminal status (COMPLETED or CANCELLED).
type Session struct {
	Id                  uuid.UUID
	OwnerId             uuid.UUID
	StudentId           *uuid.UUID
	GroupId             *uuid.UUID
	CourseId            *uuid.UUID
	Type                SessionType
	Status              SessionStatus
	Title               string
	ScheduledStart      time.Time
	ScheduledEnd        time.Time
	ActualStart         *time.Time
	ActualEnd           *time.Time
	Summary             *string
	MaxParticipants     int
	CurrentParticipants int
	CancelReason        *string
	CancelledBy         *uuid.UUID
	Version             int
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

// IsTerminal reports whether the session can no longer transition.
func (s *Session) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

// Overlaps applies the half-open interval test against another window.
func (s *Session) Overlaps(start, end time.Time) bool {
	return start.Before(s.ScheduledEnd) && s.ScheduledStart.Before(end)
}
