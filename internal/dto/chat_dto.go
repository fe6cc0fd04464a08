package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Content      string     `json:"content" validate:"required,max=4000"`
	Type         string     `json:"type" validate:"omitempty,oneof=TEXT FILE SYSTEM"`
	AttachmentId *uuid.UUID `json:"attachment_id,omitempty"`
}

type MessageResponse struct {
	Id           uuid.UUID  `json:"id"`
	GroupId      uuid.UUID  `json:"group_id"`
	SenderId     uuid.UUID  `json:"sender_id"`
	SenderName   string     `json:"sender_name,omitempty"`
	Content      string     `json:"content"`
	Type         string     `json:"type"`
	AttachmentId *uuid.UUID `json:"attachment_id,omitempty"`
	IsPinned     bool       `json:"is_pinned"`
	CreatedAt    time.Time  `json:"created_at"`
}

type MarkGroupReadResponse struct {
	Updated int64 `json:"updated"`
}

type GroupUnreadDTO struct {
	GroupId     uuid.UUID `json:"group_id"`
	GroupName   string    `json:"group_name"`
	UnreadCount int64     `json:"unread_count"`
	Preview     string    `json:"preview,omitempty"`
	PreviewAt   time.Time `json:"preview_at,omitempty"`
}

type UnreadSummaryResponse struct {
	Total  int64             `json:"total"`
	Groups []*GroupUnreadDTO `json:"groups"`
}

type HistoryRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
