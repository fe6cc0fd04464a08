package service

import (
	"context"
	"testing"
	"time"

	"studysync-be/internal/apperror"
	"studysync-be/internal/entity"
	"studysync-be/internal/pkg/tokens"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meetBaseURL = "https://meet.example.com"

func (f *fixture) meetingService() (IMeetingService, tokens.Issuer) {
	issuer := tokens.NewJWTIssuer("test-room-secret", "studysync-be", "studysync-meet")
	svc := NewMeetingService(f.uowFactory, issuer, meetBaseURL, 4*time.Hour, 15*time.Minute, 30*time.Minute)
	return svc, issuer
}

func enterable(s *entity.Session) {
	s.Status = entity.SessionStatusInProgress
	s.ScheduledStart = time.Now().Add(-10 * time.Minute)
	s.ScheduledEnd = time.Now().Add(50 * time.Minute)
}

func TestIssueTokenForOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, enterable)
	svc, issuer := f.meetingService()

	res, err := svc.Issue(context.Background(), session.Id, owner.Id, false)
	require.NoError(t, err)
	assert.True(t, res.Moderator)
	assert.Equal(t, RoomName(session.Id), res.RoomName)
	assert.Equal(t, meetBaseURL+"/"+res.RoomName, res.MeetingUrl)

	claims, err := issuer.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.RoomName, claims.RoomName)
	assert.Equal(t, owner.Id.String(), claims.SubjectId)
	assert.True(t, claims.Moderator)
}

func TestIssueTokenForParticipant(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	student := f.seedUser(t, entity.UserRoleStudent)
	session := f.seedSession(t, owner, enterable)
	svc, issuer := f.meetingService()
	ctx := context.Background()

	_, err := f.enrollmentService().Join(ctx, session.Id, student.Id)
	require.NoError(t, err)

	res, err := svc.Issue(ctx, session.Id, student.Id, false)
	require.NoError(t, err)
	assert.False(t, res.Moderator)

	claims, err := issuer.Verify(res.Token)
	require.NoError(t, err)
	assert.False(t, claims.Moderator)
}

func TestIssueTokenForAdmin(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	admin := f.seedUser(t, entity.UserRoleAdmin)
	session := f.seedSession(t, owner, enterable)
	svc, _ := f.meetingService()

	res, err := svc.Issue(context.Background(), session.Id, admin.Id, true)
	require.NoError(t, err)
	assert.True(t, res.Moderator)
}

func TestIssueTokenRejectsOutsiders(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	stranger := f.seedUser(t, entity.UserRoleStudent)
	session := f.seedSession(t, owner, enterable)
	svc, _ := f.meetingService()

	_, err := svc.Issue(context.Background(), session.Id, stranger.Id, false)
	assert.True(t, apperror.IsForbidden(err))
}

func TestIssueTokenWhenRoomNotEnterable(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, func(s *entity.Session) {
		s.ScheduledStart = time.Now().Add(2 * time.Hour)
		s.ScheduledEnd = time.Now().Add(3 * time.Hour)
	})
	svc, _ := f.meetingService()

	_, err := svc.Issue(context.Background(), session.Id, owner.Id, false)
	assert.True(t, apperror.IsConflict(err))
}

func TestIssueTokenExpiryBoundedBySessionEnd(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, enterable)
	svc, _ := f.meetingService()

	res, err := svc.Issue(context.Background(), session.Id, owner.Id, false)
	require.NoError(t, err)

	// Grace-padded end is ~80 minutes out, well under the 4h cap.
	limit := session.ScheduledEnd.Add(30*time.Minute + time.Minute)
	assert.True(t, res.ExpiresAt.Before(limit), "expiry %s beyond padded end %s", res.ExpiresAt, limit)
	assert.True(t, res.ExpiresAt.After(time.Now()))
}

func TestRoomNameIsDeterministic(t *testing.T) {
	f := newFixture(t)
	owner := f.seedUser(t, entity.UserRoleExpert)
	session := f.seedSession(t, owner, enterable)
	svc, _ := f.meetingService()
	ctx := context.Background()

	first, err := svc.Issue(ctx, session.Id, owner.Id, false)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, session.Id, owner.Id, false)
	require.NoError(t, err)
	assert.Equal(t, first.RoomName, second.RoomName)
}
