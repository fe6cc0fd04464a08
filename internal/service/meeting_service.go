package service

import (
	"context"
	"fmt"
	"time"

	"studysync-be/internal/apperror"
	"studysync-be/internal/dto"
	"studysync-be/internal/pkg/tokens"
	"studysync-be/internal/repository/specification"
	"studysync-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IMeetingService interface {
	Issue(ctx context.Context, sessionID, userID uuid.UUID, isAdmin bool) (*dto.MeetingAuthResponse, error)
}

type meetingService struct {
	uowFactory  unitofwork.RepositoryFactory
	issuer      tokens.Issuer
	baseURL     string
	maxTokenTTL time.Duration
	graceBefore time.Duration
	graceAfter  time.Duration
}

func NewMeetingService(
	uowFactory unitofwork.RepositoryFactory,
	issuer tokens.Issuer,
	baseURL string,
	maxTokenTTL time.Duration,
	graceBefore time.Duration,
	graceAfter time.Duration,
) IMeetingService {
	return &meetingService{
		uowFactory:  uowFactory,
		issuer:      issuer,
		baseURL:     baseURL,
		maxTokenTTL: maxTokenTTL,
		graceBefore: graceBefore,
		graceAfter:  graceAfter,
	}
}

func (s *meetingService) Issue(ctx context.Context, sessionID, userID uuid.UUID, isAdmin bool) (*dto.MeetingAuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFound("session", "session %s not found", sessionID)
	}

	isOwner := session.OwnerId == userID
	if !isOwner && !isAdmin {
		participant, err := uow.ParticipantRepository().FindOne(ctx,
			specification.BySession{SessionID: sessionID},
			specification.ByUser{UserID: userID},
		)
		if err != nil {
			return nil, err
		}
		if participant == nil {
			return nil, apperror.NewForbidden("user is not enrolled in this session")
		}
	}

	now := time.Now()
	if !CanEnterWindow(session, now, s.graceBefore, s.graceAfter) {
		return nil, apperror.NewConflict("room is not enterable (status %s)", session.Status)
	}

	// Token lives until the grace-padded session end, capped by config.
	ttl := session.ScheduledEnd.Add(s.graceAfter).Sub(now)
	if ttl > s.maxTokenTTL {
		ttl = s.maxTokenTTL
	}

	roomName := RoomName(sessionID)
	token, expiresAt, err := s.issuer.Sign(tokens.RoomClaims{
		RoomName:  roomName,
		SubjectId: userID.String(),
		Moderator: isOwner || isAdmin,
	}, ttl)
	if err != nil {
		return nil, err
	}

	return &dto.MeetingAuthResponse{
		SessionId:  sessionID,
		RoomName:   roomName,
		MeetingUrl: fmt.Sprintf("%s/%s", s.baseURL, roomName),
		Token:      token,
		Moderator:  isOwner || isAdmin,
		ExpiresAt:  expiresAt,
	}, nil
}

// RoomName derives the meeting room from the session id; the same session
// always maps to the same room.
func RoomName(sessionID uuid.UUID) string {
	return "studysync-" + sessionID.String()
}
