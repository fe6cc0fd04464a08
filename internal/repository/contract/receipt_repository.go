package contract

import (
	"context"
	"time"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReceiptRepository interface {
	CreateBulk(ctx context.Context, receipts []*entity.Receipt) error
	// MarkGroupRead flips every unread receipt the user holds in the group and
	// returns how many rows changed. A second call returns zero.
	MarkGroupRead(ctx context.Context, userID, groupID uuid.UUID, now time.Time) (int64, error)
	UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadByGroup(ctx context.Context, userID uuid.UUID) ([]*entity.GroupUnread, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Receipt, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
