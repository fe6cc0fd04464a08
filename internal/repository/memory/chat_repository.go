package memory

import (
	"context"
	"time"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository struct {
	txn *txn
}

func (r *MessageRepository) Create(ctx context.Context, message *entity.Message) error {
	defer r.txn.enter()()
	copy := *message
	r.txn.store.messages[message.Id] = &copy
	return nil
}

func (r *MessageRepository) Update(ctx context.Context, message *entity.Message) error {
	defer r.txn.enter()()
	if existing, ok := r.txn.store.messages[message.Id]; ok {
		existing.IsPinned = message.IsPinned
	}
	return nil
}

func (r *MessageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	defer r.txn.enter()()
	for _, m := range r.txn.store.messages {
		if matchesAll(m, specs, messageMatches) {
			copy := *m
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *MessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	defer r.txn.enter()()
	var out []*entity.Message
	for _, m := range r.txn.store.messages {
		if matchesAll(m, specs, messageMatches) {
			copy := *m
			out = append(out, &copy)
		}
	}
	out = orderAndPage(out, func(m *entity.Message) int64 { return m.CreatedAt.UnixNano() }, specs)
	return out, nil
}

func (r *MessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	defer r.txn.enter()()
	var count int64
	for _, m := range r.txn.store.messages {
		if matchesAll(m, specs, messageMatches) {
			count++
		}
	}
	return count, nil
}

type ReceiptRepository struct {
	txn *txn
}

func (r *ReceiptRepository) CreateBulk(ctx context.Context, receipts []*entity.Receipt) error {
	defer r.txn.enter()()
	for _, receipt := range receipts {
		copy := *receipt
		r.txn.store.receipts[receipt.Id] = &copy
	}
	return nil
}

func (r *ReceiptRepository) MarkGroupRead(ctx context.Context, userID, groupID uuid.UUID, now time.Time) (int64, error) {
	defer r.txn.enter()()
	var updated int64
	for _, receipt := range r.txn.store.receipts {
		if receipt.RecipientId != userID || receipt.IsRead {
			continue
		}
		msg, ok := r.txn.store.messages[receipt.MessageId]
		if !ok || msg.GroupId != groupID || msg.DeletedAt != nil {
			continue
		}
		receipt.IsRead = true
		readAt := now
		receipt.ReadAt = &readAt
		updated++
	}
	return updated, nil
}

func (r *ReceiptRepository) UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	defer r.txn.enter()()
	var count int64
	for _, receipt := range r.txn.store.receipts {
		if receipt.RecipientId == userID && !receipt.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *ReceiptRepository) UnreadByGroup(ctx context.Context, userID uuid.UUID) ([]*entity.GroupUnread, error) {
	defer r.txn.enter()()
	byGroup := make(map[uuid.UUID]*entity.GroupUnread)
	for _, receipt := range r.txn.store.receipts {
		if receipt.RecipientId != userID || receipt.IsRead {
			continue
		}
		msg, ok := r.txn.store.messages[receipt.MessageId]
		if !ok || msg.DeletedAt != nil {
			continue
		}
		summary, ok := byGroup[msg.GroupId]
		if !ok {
			summary = &entity.GroupUnread{GroupId: msg.GroupId}
			if group, found := r.txn.store.groups[msg.GroupId]; found {
				summary.GroupName = group.Name
			}
			byGroup[msg.GroupId] = summary
		}
		summary.UnreadCount++
	}
	out := make([]*entity.GroupUnread, 0, len(byGroup))
	for groupID, summary := range byGroup {
		// Latest message in the group, read or not, mirrors the SQL preview.
		for _, msg := range r.txn.store.messages {
			if msg.GroupId != groupID || msg.DeletedAt != nil {
				continue
			}
			if summary.LatestAt.IsZero() || msg.CreatedAt.After(summary.LatestAt) {
				summary.LatestPreview = msg.Content
				summary.LatestSenderId = msg.SenderId
				summary.LatestAt = msg.CreatedAt
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

func (r *ReceiptRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Receipt, error) {
	defer r.txn.enter()()
	var out []*entity.Receipt
	for _, receipt := range r.txn.store.receipts {
		if matchesAll(receipt, specs, receiptMatches) {
			copy := *receipt
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *ReceiptRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	defer r.txn.enter()()
	var count int64
	for _, receipt := range r.txn.store.receipts {
		if matchesAll(receipt, specs, receiptMatches) {
			count++
		}
	}
	return count, nil
}
