package implementation

import (
	"context"
	"errors"

	"studysync-be/internal/entity"
	"studysync-be/internal/mapper"
	"studysync-be/internal/model"
	"studysync-be/internal/repository/contract"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewParticipantRepository(db *gorm.DB) contract.ParticipantRepository {
	return &ParticipantRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *ParticipantRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ParticipantRepositoryImpl) Create(ctx context.Context, participant *entity.Participant) error {
	m := r.mapper.ParticipantToModel(participant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*participant = *r.mapper.ParticipantToEntity(m)
	return nil
}

func (r *ParticipantRepositoryImpl) Update(ctx context.Context, participant *entity.Participant) error {
	m := r.mapper.ParticipantToModel(participant)
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ParticipantRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Participant{}, "id = ?", id).Error
}

func (r *ParticipantRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Participant, error) {
	var m model.Participant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ParticipantToEntity(&m), nil
}

func (r *ParticipantRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Participant, error) {
	var models []*model.Participant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Participant, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ParticipantToEntity(m)
	}
	return entities, nil
}

func (r *ParticipantRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Participant{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
