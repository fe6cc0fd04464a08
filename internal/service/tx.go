package service

import (
	"context"
	"strings"

	"studysync-be/internal/repository/unitofwork"
)

// runInTx wraps fn in a unit-of-work transaction. Transient serialization
// failures are retried once; everything else surfaces to the caller.
func runInTx(ctx context.Context, factory unitofwork.RepositoryFactory, fn func(uow unitofwork.UnitOfWork) error) error {
	err := attemptTx(ctx, factory, fn)
	if err != nil && isTransient(err) {
		err = attemptTx(ctx, factory, fn)
	}
	return err
}

func attemptTx(ctx context.Context, factory unitofwork.RepositoryFactory, fn func(uow unitofwork.UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			uow.Rollback()
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// isTransient matches the postgres failures worth a single retry: deadlocks
// and serialization aborts.
func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}
