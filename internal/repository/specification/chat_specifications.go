package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByGroup filters messages (or group members) by study group.
type ByGroup struct {
	GroupID uuid.UUID
}

func (s ByGroup) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("group_id = ?", s.GroupID)
}

// ByRecipient filters receipts by their recipient.
type ByRecipient struct {
	RecipientID uuid.UUID
}

func (s ByRecipient) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("recipient_id = ?", s.RecipientID)
}

// Unread filters receipts still waiting to be read.
type Unread struct{}

func (s Unread) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = false")
}

// ByMessage filters receipts by message.
type ByMessage struct {
	MessageID uuid.UUID
}

func (s ByMessage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("message_id = ?", s.MessageID)
}

// Pinned filters pinned messages.
type Pinned struct{}

func (s Pinned) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_pinned = true")
}
