package contract

import (
	"context"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GroupRepository interface {
	Create(ctx context.Context, group *entity.StudyGroup) error
	AddMember(ctx context.Context, member *entity.GroupMember) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudyGroup, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	// MemberIDs enumerates the user ids of every member, creator excluded
	// unless they are also a member row.
	MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}
