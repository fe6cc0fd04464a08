package implementation

import (
	"context"
	"time"

	"studysync-be/internal/entity"
	"studysync-be/internal/mapper"
	"studysync-be/internal/model"
	"studysync-be/internal/repository/contract"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewReceiptRepository(db *gorm.DB) contract.ReceiptRepository {
	return &ReceiptRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ReceiptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReceiptRepositoryImpl) CreateBulk(ctx context.Context, receipts []*entity.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	models := make([]*model.Receipt, len(receipts))
	for i, receipt := range receipts {
		models[i] = r.mapper.ReceiptToModel(receipt)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *ReceiptRepositoryImpl) MarkGroupRead(ctx context.Context, userID, groupID uuid.UUID, now time.Time) (int64, error) {
	// Same soft-delete filter as the unread summary, so the returned count
	// matches what that summary reported.
	subQuery := r.db.Table("group_messages").Select("id").
		Where("group_id = ? AND deleted_at IS NULL", groupID)
	res := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("recipient_id = ? AND is_read = false AND message_id IN (?)", userID, subQuery).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *ReceiptRepositoryImpl) UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("recipient_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}

func (r *ReceiptRepositoryImpl) UnreadByGroup(ctx context.Context, userID uuid.UUID) ([]*entity.GroupUnread, error) {
	type row struct {
		GroupId     uuid.UUID
		GroupName   string
		UnreadCount int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Table("message_receipts").
		Select("group_messages.group_id AS group_id, study_groups.name AS group_name, COUNT(*) AS unread_count").
		Joins("JOIN group_messages ON group_messages.id = message_receipts.message_id").
		Joins("JOIN study_groups ON study_groups.id = group_messages.group_id").
		Where("message_receipts.recipient_id = ? AND message_receipts.is_read = false", userID).
		Where("group_messages.deleted_at IS NULL").
		Group("group_messages.group_id, study_groups.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*entity.GroupUnread, 0, len(rows))
	for _, item := range rows {
		summary := &entity.GroupUnread{
			GroupId:     item.GroupId,
			GroupName:   item.GroupName,
			UnreadCount: item.UnreadCount,
		}
		// Latest message preview per group; one extra query per group with
		// unread traffic keeps the aggregate above index-only.
		var latest model.Message
		err := r.db.WithContext(ctx).
			Where("group_id = ?", item.GroupId).
			Order("created_at DESC").
			First(&latest).Error
		if err == nil {
			summary.LatestPreview = latest.Content
			summary.LatestSenderId = latest.SenderId
			summary.LatestAt = latest.CreatedAt
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, nil
}

func (r *ReceiptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Receipt, error) {
	var models []*model.Receipt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Receipt, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ReceiptToEntity(m)
	}
	return entities, nil
}

func (r *ReceiptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Receipt{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
