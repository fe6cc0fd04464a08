package memory

import (
	"sync"

	"studysync-be/internal/entity"

	"github.com/google/uuid"
)

// Store is a map-backed stand-in for the relational database. A single mutex
// plays the role of the row locks: a unit of work holds it from Begin to
// Commit/Rollback, so transactions are fully serialized, which is strictly
// stronger than what the Postgres implementation guarantees.
type Store struct {
	mu sync.Mutex

	sessions     map[uuid.UUID]*entity.Session
	participants map[uuid.UUID]*entity.Participant
	messages     map[uuid.UUID]*entity.Message
	receipts     map[uuid.UUID]*entity.Receipt
	users        map[uuid.UUID]*entity.User
	groups       map[uuid.UUID]*entity.StudyGroup
	members      map[uuid.UUID]*entity.GroupMember
}

func NewStore() *Store {
	return &Store{
		sessions:     make(map[uuid.UUID]*entity.Session),
		participants: make(map[uuid.UUID]*entity.Participant),
		messages:     make(map[uuid.UUID]*entity.Message),
		receipts:     make(map[uuid.UUID]*entity.Receipt),
		users:        make(map[uuid.UUID]*entity.User),
		groups:       make(map[uuid.UUID]*entity.StudyGroup),
		members:      make(map[uuid.UUID]*entity.GroupMember),
	}
}

type snapshot struct {
	sessions     map[uuid.UUID]*entity.Session
	participants map[uuid.UUID]*entity.Participant
	messages     map[uuid.UUID]*entity.Message
	receipts     map[uuid.UUID]*entity.Receipt
	users        map[uuid.UUID]*entity.User
	groups       map[uuid.UUID]*entity.StudyGroup
	members      map[uuid.UUID]*entity.GroupMember
}

func (s *Store) take() *snapshot {
	return &snapshot{
		sessions:     cloneMap(s.sessions),
		participants: cloneMap(s.participants),
		messages:     cloneMap(s.messages),
		receipts:     cloneMap(s.receipts),
		users:        cloneMap(s.users),
		groups:       cloneMap(s.groups),
		members:      cloneMap(s.members),
	}
}

func (s *Store) restore(snap *snapshot) {
	s.sessions = snap.sessions
	s.participants = snap.participants
	s.messages = snap.messages
	s.receipts = snap.receipts
	s.users = snap.users
	s.groups = snap.groups
	s.members = snap.members
}

func cloneMap[T any](in map[uuid.UUID]*T) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(in))
	for k, v := range in {
		copy := *v
		out[k] = &copy
	}
	return out
}
