package implementation

import (
	"context"
	"errors"
	"time"

	"studysync-be/internal/entity"
	"studysync-be/internal/model"
	"studysync-be/internal/repository/contract"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupRepositoryImpl struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) contract.GroupRepository {
	return &GroupRepositoryImpl{db: db}
}

func (r *GroupRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func groupToEntity(m *model.StudyGroup) *entity.StudyGroup {
	if m == nil {
		return nil
	}
	return &entity.StudyGroup{
		Id:        m.Id,
		Name:      m.Name,
		CreatorId: m.CreatorId,
		CourseId:  m.CourseId,
		CreatedAt: m.CreatedAt,
	}
}

func (r *GroupRepositoryImpl) Create(ctx context.Context, group *entity.StudyGroup) error {
	m := &model.StudyGroup{
		Id:        group.Id,
		Name:      group.Name,
		CreatorId: group.CreatorId,
		CourseId:  group.CourseId,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*group = *groupToEntity(m)
	return nil
}

func (r *GroupRepositoryImpl) AddMember(ctx context.Context, member *entity.GroupMember) error {
	m := &model.GroupMember{
		Id:       member.Id,
		GroupId:  member.GroupId,
		UserId:   member.UserId,
		JoinedAt: member.JoinedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GroupRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudyGroup, error) {
	var m model.StudyGroup
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return groupToEntity(&m), nil
}

func (r *GroupRepositoryImpl) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepositoryImpl) MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}
