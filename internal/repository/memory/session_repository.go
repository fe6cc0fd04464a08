package memory

import (
	"context"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository struct {
	txn *txn
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	defer r.txn.enter()()
	copy := *session
	r.txn.store.sessions[session.Id] = &copy
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *entity.Session) error {
	defer r.txn.enter()()
	copy := *session
	r.txn.store.sessions[session.Id] = &copy
	return nil
}

func (r *SessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	defer r.txn.enter()()
	for _, s := range r.txn.store.sessions {
		if matchesAll(s, specs, sessionMatches) {
			copy := *s
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *SessionRepository) FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	// The store mutex held by the transaction already provides exclusion.
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *SessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	defer r.txn.enter()()
	var out []*entity.Session
	for _, s := range r.txn.store.sessions {
		if matchesAll(s, specs, sessionMatches) {
			copy := *s
			out = append(out, &copy)
		}
	}
	out = orderAndPage(out, func(s *entity.Session) int64 { return s.CreatedAt.UnixNano() }, specs)
	return out, nil
}

func (r *SessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	defer r.txn.enter()()
	var count int64
	for _, s := range r.txn.store.sessions {
		if matchesAll(s, specs, sessionMatches) {
			count++
		}
	}
	return count, nil
}

func matchesAll[T any](item *T, specs []specification.Specification, match func(*T, specification.Specification) bool) bool {
	for _, spec := range specs {
		if !match(item, spec) {
			return false
		}
	}
	return true
}
