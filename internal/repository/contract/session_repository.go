package contract

import (
	"context"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	// FindOneForUpdate locks the session row for the remainder of the current
	// transaction. Capacity checks and counter updates run behind this lock.
	FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
