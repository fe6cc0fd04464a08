package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/memory"
	"studysync-be/internal/repository/specification"
	"studysync-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// recordedEvent is one captured broadcast.
type recordedEvent struct {
	Topic   string
	Payload interface{}
}

// fakeBroadcaster records what the services publish after commit.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeBroadcaster) Publish(_ context.Context, topic string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Topic: topic, Payload: payload})
	return nil
}

func (f *fakeBroadcaster) recorded() []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedEvent, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeBroadcaster) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Topic
	}
	return out
}

type fixture struct {
	store      *memory.Store
	uowFactory unitofwork.RepositoryFactory
	broadcast  *fakeBroadcaster
	presence   *memory.PresenceRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store:      store,
		uowFactory: memory.NewFactory(store),
		broadcast:  &fakeBroadcaster{},
		presence:   memory.NewPresenceRepository(time.Minute),
	}
}

func (f *fixture) seedUser(t *testing.T, role entity.UserRole) *entity.User {
	t.Helper()
	user := &entity.User{
		Id:        uuid.New(),
		Email:     uuid.NewString() + "@example.com",
		FullName:  "User " + uuid.NewString()[:8],
		Role:      role,
		CreatedAt: time.Now(),
	}
	uow := f.uowFactory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), user))
	return user
}

func (f *fixture) seedGroup(t *testing.T, creator *entity.User, members ...*entity.User) *entity.StudyGroup {
	t.Helper()
	group := &entity.StudyGroup{
		Id:        uuid.New(),
		Name:      "Group " + uuid.NewString()[:8],
		CreatorId: creator.Id,
		CreatedAt: time.Now(),
	}
	ctx := context.Background()
	uow := f.uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.GroupRepository().Create(ctx, group))
	for _, m := range members {
		require.NoError(t, uow.GroupRepository().AddMember(ctx, &entity.GroupMember{
			Id:       uuid.New(),
			GroupId:  group.Id,
			UserId:   m.Id,
			JoinedAt: time.Now(),
		}))
	}
	return group
}

func (f *fixture) seedSession(t *testing.T, owner *entity.User, mutate func(*entity.Session)) *entity.Session {
	t.Helper()
	now := time.Now()
	session := &entity.Session{
		Id:              uuid.New(),
		OwnerId:         owner.Id,
		Type:            entity.SessionTypeGroup,
		Status:          entity.SessionStatusScheduled,
		Title:           "Algebra review",
		ScheduledStart:  now.Add(time.Hour),
		ScheduledEnd:    now.Add(2 * time.Hour),
		MaxParticipants: 10,
		CreatedAt:       now,
	}
	if mutate != nil {
		mutate(session)
	}
	ctx := context.Background()
	uow := f.uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.SessionRepository().Create(ctx, session))
	return session
}

func (f *fixture) sessionService() ISessionService {
	return NewSessionService(f.uowFactory, f.broadcast, nil, 15*time.Minute, 30*time.Minute, nopLogger{})
}

func (f *fixture) enrollmentService() IEnrollmentService {
	return NewEnrollmentService(f.uowFactory, f.broadcast, nil, f.presence, nopLogger{})
}

func (f *fixture) chatService() IChatService {
	return NewChatService(f.uowFactory, f.broadcast, nil, nopLogger{})
}

func (f *fixture) loadSession(t *testing.T, id uuid.UUID) *entity.Session {
	t.Helper()
	ctx := context.Background()
	uow := f.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}
