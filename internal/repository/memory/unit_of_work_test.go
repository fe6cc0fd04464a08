package memory

import (
	"context"
	"testing"
	"time"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *entity.Session {
	now := time.Now()
	return &entity.Session{
		Id:              uuid.New(),
		OwnerId:         uuid.New(),
		Type:            entity.SessionTypeGroup,
		Status:          entity.SessionStatusScheduled,
		Title:           "t",
		ScheduledStart:  now.Add(time.Hour),
		ScheduledEnd:    now.Add(2 * time.Hour),
		MaxParticipants: 3,
		CreatedAt:       now,
	}
}

func TestCommitKeepsWrites(t *testing.T) {
	factory := NewFactory(NewStore())
	ctx := context.Background()
	session := newSession()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.SessionRepository().Create(ctx, session))
	require.NoError(t, uow.Commit())

	found, err := factory.NewUnitOfWork(ctx).SessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	factory := NewFactory(NewStore())
	ctx := context.Background()
	session := newSession()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.SessionRepository().Create(ctx, session))
	require.NoError(t, uow.Rollback())

	found, err := factory.NewUnitOfWork(ctx).SessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRollbackRestoresPriorValues(t *testing.T) {
	factory := NewFactory(NewStore())
	ctx := context.Background()
	session := newSession()

	require.NoError(t, factory.NewUnitOfWork(ctx).SessionRepository().Create(ctx, session))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	locked, err := uow.SessionRepository().FindOneForUpdate(ctx, session.Id)
	require.NoError(t, err)
	locked.CurrentParticipants = 99
	require.NoError(t, uow.SessionRepository().Update(ctx, locked))
	require.NoError(t, uow.Rollback())

	found, err := factory.NewUnitOfWork(ctx).SessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 0, found.CurrentParticipants)
}

func TestFindReturnsCopies(t *testing.T) {
	factory := NewFactory(NewStore())
	ctx := context.Background()
	session := newSession()
	require.NoError(t, factory.NewUnitOfWork(ctx).SessionRepository().Create(ctx, session))

	repo := factory.NewUnitOfWork(ctx).SessionRepository()
	first, err := repo.FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	first.Title = "mutated"

	second, err := repo.FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	assert.Equal(t, "t", second.Title)
}
