package service

import (
	"context"
	"testing"
	"time"

	"studysync-be/internal/apperror"
	"studysync-be/internal/dto"
	"studysync-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReq(start, end time.Time) *dto.CreateSessionRequest {
	return &dto.CreateSessionRequest{
		Title:           "Calculus office hours",
		Type:            string(entity.SessionTypeGroup),
		ScheduledStart:  start,
		ScheduledEnd:    end,
		MaxParticipants: 5,
	}
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	svc := f.sessionService()
	ctx := context.Background()

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	res, err := svc.Create(ctx, owner.Id, createReq(base, base.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, string(entity.SessionStatusScheduled), res.Status)
	assert.Equal(t, owner.Id, res.OwnerId)
	assert.Equal(t, 0, res.CurrentParticipants)
}

func TestCreateSessionRejectsBadWindow(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	svc := f.sessionService()
	ctx := context.Background()

	base := time.Now().Add(24 * time.Hour)

	_, err := svc.Create(ctx, owner.Id, createReq(base, base))
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(ctx, owner.Id, createReq(base.Add(time.Hour), base))
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateSessionOverlapDetection(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	svc := f.sessionService()
	ctx := context.Background()

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour) // stands in for 10:00

	_, err := svc.Create(ctx, owner.Id, createReq(base, base.Add(time.Hour)))
	require.NoError(t, err)

	// [10:30, 11:30) against [10:00, 11:00) clashes.
	_, err = svc.Create(ctx, owner.Id, createReq(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, apperror.IsConflict(err))

	// Back to back [11:00, 12:00) is fine: the window is half-open.
	_, err = svc.Create(ctx, owner.Id, createReq(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.NoError(t, err)

	// A different owner can book the clashing slot.
	other := f.seedUser(t, entity.UserRoleExpert)
	_, err = svc.Create(ctx, other.Id, createReq(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.NoError(t, err)
}

func TestCreateSessionCancelledSlotIsReusable(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	svc := f.sessionService()
	ctx := context.Background()

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	first, err := svc.Create(ctx, owner.Id, createReq(base, base.Add(time.Hour)))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, first.Id, owner.Id, &dto.CancelSessionRequest{Reason: "sick"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner.Id, createReq(base, base.Add(time.Hour)))
	assert.NoError(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, nil)
	svc := f.sessionService()
	ctx := context.Background()

	started, err := svc.Start(ctx, session.Id, owner.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SessionStatusInProgress), started.Status)
	assert.NotNil(t, started.ActualStart)

	summary := "Covered derivatives"
	completed, err := svc.Complete(ctx, session.Id, owner.Id, &dto.CompleteSessionRequest{Summary: &summary})
	require.NoError(t, err)
	assert.Equal(t, string(entity.SessionStatusCompleted), completed.Status)
	assert.NotNil(t, completed.ActualEnd)
	require.NotNil(t, completed.Summary)
	assert.Equal(t, summary, *completed.Summary)

	// Terminal states never transition again.
	_, err = svc.Start(ctx, session.Id, owner.Id)
	assert.True(t, apperror.IsState(err))
	_, err = svc.Cancel(ctx, session.Id, owner.Id, &dto.CancelSessionRequest{Reason: "late"})
	assert.True(t, apperror.IsState(err))
}

func TestSessionTransitionsRequireOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	stranger := f.seedUser(t, entity.UserRoleStudent)
	session := f.seedSession(t, owner, nil)
	svc := f.sessionService()
	ctx := context.Background()

	_, err := svc.Start(ctx, session.Id, stranger.Id)
	assert.True(t, apperror.IsForbidden(err))

	_, err = svc.Cancel(ctx, session.Id, stranger.Id, &dto.CancelSessionRequest{Reason: "nope"})
	assert.True(t, apperror.IsForbidden(err))

	// Nothing changed.
	assert.Equal(t, entity.SessionStatusScheduled, f.loadSession(t, session.Id).Status)
}

func TestCancelOnlyFromScheduled(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, nil)
	svc := f.sessionService()
	ctx := context.Background()

	_, err := svc.Start(ctx, session.Id, owner.Id)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, session.Id, owner.Id, &dto.CancelSessionRequest{Reason: "changed my mind"})
	assert.True(t, apperror.IsState(err))
}

func TestCancelRecordsReasonAndActor(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, nil)
	svc := f.sessionService()

	res, err := svc.Cancel(context.Background(), session.Id, owner.Id, &dto.CancelSessionRequest{Reason: "family emergency"})
	require.NoError(t, err)
	require.NotNil(t, res.CancelReason)
	assert.Equal(t, "family emergency", *res.CancelReason)

	stored := f.loadSession(t, session.Id)
	require.NotNil(t, stored.CancelledBy)
	assert.Equal(t, owner.Id, *stored.CancelledBy)
}

func TestStatusBroadcastAfterTransition(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, nil)
	svc := f.sessionService()

	_, err := svc.Start(context.Background(), session.Id, owner.Id)
	require.NoError(t, err)

	events := f.broadcast.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, "session/"+session.Id.String()+"/status", events[0].Topic)
	payload, ok := events[0].Payload.(dto.StatusEventPayload)
	require.True(t, ok)
	assert.Equal(t, string(entity.SessionStatusInProgress), payload.Status)
}

func TestFailedTransitionPublishesNothing(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, func(s *entity.Session) {
		s.Status = entity.SessionStatusCompleted
	})
	svc := f.sessionService()

	_, err := svc.Start(context.Background(), session.Id, owner.Id)
	assert.True(t, apperror.IsState(err))
	assert.Empty(t, f.broadcast.recorded())
}

func TestCanEnterRoom(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	svc := f.sessionService()
	ctx := context.Background()

	tests := []struct {
		name     string
		mutate   func(*entity.Session)
		canEnter bool
	}{
		{
			name: "inside grace window before start",
			mutate: func(s *entity.Session) {
				s.ScheduledStart = time.Now().Add(10 * time.Minute)
				s.ScheduledEnd = time.Now().Add(70 * time.Minute)
			},
			canEnter: true,
		},
		{
			name: "too early",
			mutate: func(s *entity.Session) {
				s.ScheduledStart = time.Now().Add(time.Hour)
				s.ScheduledEnd = time.Now().Add(2 * time.Hour)
			},
			canEnter: false,
		},
		{
			name: "in progress",
			mutate: func(s *entity.Session) {
				s.Status = entity.SessionStatusInProgress
				s.ScheduledStart = time.Now().Add(-time.Hour)
				s.ScheduledEnd = time.Now().Add(time.Hour)
			},
			canEnter: true,
		},
		{
			name: "within grace after scheduled end",
			mutate: func(s *entity.Session) {
				s.ScheduledStart = time.Now().Add(-2 * time.Hour)
				s.ScheduledEnd = time.Now().Add(-10 * time.Minute)
			},
			canEnter: true,
		},
		{
			name: "long past",
			mutate: func(s *entity.Session) {
				s.ScheduledStart = time.Now().Add(-4 * time.Hour)
				s.ScheduledEnd = time.Now().Add(-3 * time.Hour)
			},
			canEnter: false,
		},
		{
			name: "cancelled",
			mutate: func(s *entity.Session) {
				s.Status = entity.SessionStatusCancelled
				s.ScheduledStart = time.Now().Add(-time.Minute)
				s.ScheduledEnd = time.Now().Add(time.Hour)
			},
			canEnter: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session := f.seedSession(t, owner, tc.mutate)
			res, err := svc.CanEnterRoom(ctx, session.Id)
			require.NoError(t, err)
			assert.Equal(t, tc.canEnter, res.CanEnter)
		})
	}
}

func TestShowUnknownSession(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()

	_, err := svc.Show(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestListByOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	other := f.seedUser(t, entity.UserRoleExpert)
	f.seedSession(t, owner, nil)
	f.seedSession(t, owner, func(s *entity.Session) {
		s.ScheduledStart = time.Now().Add(3 * time.Hour)
		s.ScheduledEnd = time.Now().Add(4 * time.Hour)
	})
	f.seedSession(t, other, nil)

	res, err := f.sessionService().ListByOwner(context.Background(), owner.Id)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}
