package memory

import (
	"context"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ParticipantRepository struct {
	txn *txn
}

func (r *ParticipantRepository) Create(ctx context.Context, participant *entity.Participant) error {
	defer r.txn.enter()()
	copy := *participant
	r.txn.store.participants[participant.Id] = &copy
	return nil
}

func (r *ParticipantRepository) Update(ctx context.Context, participant *entity.Participant) error {
	defer r.txn.enter()()
	copy := *participant
	r.txn.store.participants[participant.Id] = &copy
	return nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.txn.enter()()
	delete(r.txn.store.participants, id)
	return nil
}

func (r *ParticipantRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Participant, error) {
	defer r.txn.enter()()
	for _, p := range r.txn.store.participants {
		if matchesAll(p, specs, participantMatches) {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *ParticipantRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Participant, error) {
	defer r.txn.enter()()
	var out []*entity.Participant
	for _, p := range r.txn.store.participants {
		if matchesAll(p, specs, participantMatches) {
			copy := *p
			out = append(out, &copy)
		}
	}
	out = orderAndPage(out, func(p *entity.Participant) int64 { return p.RegisteredAt.UnixNano() }, specs)
	return out, nil
}

func (r *ParticipantRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	defer r.txn.enter()()
	var count int64
	for _, p := range r.txn.store.participants {
		if matchesAll(p, specs, participantMatches) {
			count++
		}
	}
	return count, nil
}

type UserRepository struct {
	txn *txn
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	defer r.txn.enter()()
	copy := *user
	r.txn.store.users[user.Id] = &copy
	return nil
}

func (r *UserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	defer r.txn.enter()()
	for _, u := range r.txn.store.users {
		if matchesAll(u, specs, userMatches) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *UserRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	defer r.txn.enter()()
	var out []*entity.User
	for _, u := range r.txn.store.users {
		if matchesAll(u, specs, userMatches) {
			copy := *u
			out = append(out, &copy)
		}
	}
	return out, nil
}

type GroupRepository struct {
	txn *txn
}

func (r *GroupRepository) Create(ctx context.Context, group *entity.StudyGroup) error {
	defer r.txn.enter()()
	copy := *group
	r.txn.store.groups[group.Id] = &copy
	return nil
}

func (r *GroupRepository) AddMember(ctx context.Context, member *entity.GroupMember) error {
	defer r.txn.enter()()
	copy := *member
	r.txn.store.members[member.Id] = &copy
	return nil
}

func (r *GroupRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudyGroup, error) {
	defer r.txn.enter()()
	for _, g := range r.txn.store.groups {
		if matchesAll(g, specs, groupMatches) {
			copy := *g
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	defer r.txn.enter()()
	for _, m := range r.txn.store.members {
		if m.GroupId == groupID && m.UserId == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *GroupRepository) MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	defer r.txn.enter()()
	var ids []uuid.UUID
	for _, m := range r.txn.store.members {
		if m.GroupId == groupID {
			ids = append(ids, m.UserId)
		}
	}
	return ids, nil
}
