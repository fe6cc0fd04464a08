package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText   MessageType = "TEXT"
	MessageTypeFile   MessageType = "FILE"
	MessageTypeSystem MessageType = "SYSTEM"
)

// Message is immutable after creation except for IsPinned and soft deletion.
type Message struct {
	Id           uuid.UUID
	GroupId      uuid.UUID
	SenderId     uuid.UUID
	Content      string
	Type         MessageType
	AttachmentId *uuid.UUID
	Metadata     map[string]interface{}
	IsPinned     bool
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// Receipt is the per-recipient read-state record for a message. It is created
// exactly once per recipient, in the same transaction as its message.
type Receipt struct {
	Id          uuid.UUID
	MessageId   uuid.UUID
	RecipientId uuid.UUID
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// GroupUnread is the per-group slice of an unread summary.
type GroupUnread struct {
	GroupId        uuid.UUID
	GroupName      string
	UnreadCount    int64
	LatestPreview  string
	LatestSenderId uuid.UUID
	LatestAt       time.Time
}
