package mapper

import (
	"encoding/json"
	"time"

	"studysync-be/internal/entity"
	"studysync-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	var meta map[string]interface{}
	if len(msg.Metadata) > 0 {
		_ = json.Unmarshal(msg.Metadata, &meta)
	}
	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}
	return &entity.Message{
		Id:           msg.Id,
		GroupId:      msg.GroupId,
		SenderId:     msg.SenderId,
		Content:      msg.Content,
		Type:         entity.MessageType(msg.Type),
		AttachmentId: msg.AttachmentId,
		Metadata:     meta,
		IsPinned:     msg.IsPinned,
		CreatedAt:    msg.CreatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	out := &model.Message{
		Id:           msg.Id,
		GroupId:      msg.GroupId,
		SenderId:     msg.SenderId,
		Content:      msg.Content,
		Type:         string(msg.Type),
		AttachmentId: msg.AttachmentId,
		IsPinned:     msg.IsPinned,
		CreatedAt:    msg.CreatedAt,
	}
	if msg.Metadata != nil {
		if raw, err := json.Marshal(msg.Metadata); err == nil {
			out.Metadata = datatypes.JSON(raw)
		}
	}
	if msg.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	}
	return out
}

func (m *ChatMapper) ReceiptToEntity(r *model.Receipt) *entity.Receipt {
	if r == nil {
		return nil
	}
	return &entity.Receipt{
		Id:          r.Id,
		MessageId:   r.MessageId,
		RecipientId: r.RecipientId,
		IsRead:      r.IsRead,
		ReadAt:      r.ReadAt,
		CreatedAt:   r.CreatedAt,
	}
}

func (m *ChatMapper) ReceiptToModel(r *entity.Receipt) *model.Receipt {
	if r == nil {
		return nil
	}
	return &model.Receipt{
		Id:          r.Id,
		MessageId:   r.MessageId,
		RecipientId: r.RecipientId,
		IsRead:      r.IsRead,
		ReadAt:      r.ReadAt,
		CreatedAt:   r.CreatedAt,
	}
}
