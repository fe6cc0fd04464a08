package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByOwner filters sessions by their owning expert.
type ByOwner struct {
	OwnerID uuid.UUID
}

func (s ByOwner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

// NotCancelled excludes cancelled sessions; completed ones still block the
// calendar slot they occupied, so they stay in.
type NotCancelled struct{}

func (s NotCancelled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", "CANCELLED")
}

// OverlappingWindow matches sessions whose scheduled window overlaps the
// half-open interval [Start, End).
type OverlappingWindow struct {
	Start time.Time
	End   time.Time
}

func (s OverlappingWindow) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scheduled_start < ? AND ? < scheduled_end", s.End, s.Start)
}

// BySession filters participant rows by session.
type BySession struct {
	SessionID uuid.UUID
}

func (s BySession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByUser filters by user column.
type ByUser struct {
	UserID uuid.UUID
}

func (s ByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}
