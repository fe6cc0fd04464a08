package memory

import (
	"context"
	"fmt"

	"studysync-be/internal/repository/contract"
	"studysync-be/internal/repository/unitofwork"
)

// Factory builds unit of works over a shared in-memory store.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{txn: &txn{store: f.store}}
}

// txn tracks whether the store mutex is currently held by this unit of work.
// Repositories lock per call outside a transaction and piggyback on the held
// lock inside one.
type txn struct {
	store  *Store
	active bool
	snap   *snapshot
}

func (t *txn) enter() func() {
	if t.active {
		return func() {}
	}
	t.store.mu.Lock()
	return t.store.mu.Unlock
}

type UnitOfWork struct {
	txn *txn
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.txn.active {
		return fmt.Errorf("transaction already started")
	}
	u.txn.store.mu.Lock()
	u.txn.snap = u.txn.store.take()
	u.txn.active = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.txn.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.txn.snap = nil
	u.txn.active = false
	u.txn.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.txn.active {
		return fmt.Errorf("no transaction to rollback")
	}
	u.txn.store.restore(u.txn.snap)
	u.txn.snap = nil
	u.txn.active = false
	u.txn.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) SessionRepository() contract.SessionRepository {
	return &SessionRepository{txn: u.txn}
}

func (u *UnitOfWork) ParticipantRepository() contract.ParticipantRepository {
	return &ParticipantRepository{txn: u.txn}
}

func (u *UnitOfWork) MessageRepository() contract.MessageRepository {
	return &MessageRepository{txn: u.txn}
}

func (u *UnitOfWork) ReceiptRepository() contract.ReceiptRepository {
	return &ReceiptRepository{txn: u.txn}
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &UserRepository{txn: u.txn}
}

func (u *UnitOfWork) GroupRepository() contract.GroupRepository {
	return &GroupRepository{txn: u.txn}
}
