package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupId      uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_group_created,priority:1"`
	SenderId     uuid.UUID      `gorm:"type:uuid;not null"`
	Content      string         `gorm:"type:text;not null"`
	Type         string         `gorm:"type:varchar(20);not null;default:'TEXT'"`
	AttachmentId *uuid.UUID     `gorm:"type:uuid"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	IsPinned     bool           `gorm:"not null;default:false"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index:idx_messages_group_created,priority:2"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "group_messages"
}

type Receipt struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MessageId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_receipts_message_recipient,priority:1"`
	RecipientId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_receipts_message_recipient,priority:2;index:idx_receipts_recipient_unread,priority:1"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_receipts_recipient_unread,priority:2"`
	ReadAt      *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Receipt) TableName() string {
	return "message_receipts"
}
