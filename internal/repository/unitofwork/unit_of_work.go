package unitofwork

import (
	"context"

	"studysync-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	ParticipantRepository() contract.ParticipantRepository
	MessageRepository() contract.MessageRepository
	ReceiptRepository() contract.ReceiptRepository
	UserRepository() contract.UserRepository
	GroupRepository() contract.GroupRepository
}
