package contract

import (
	"context"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	// FindOneForUpdate locks the user row until the transaction ends. Booking
	// takes this lock on the owner so concurrent overlap checks serialize.
	FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
}
