package contract

import (
	"context"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *entity.Participant) error
	Update(ctx context.Context, participant *entity.Participant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Participant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Participant, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
