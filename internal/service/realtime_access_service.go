package service

import (
	"context"
	"strings"

	"studysync-be/internal/repository/specification"
	"studysync-be/internal/repository/unitofwork"
	"studysync-be/internal/websocket"

	"github.com/google/uuid"
)

var sessionTopicKinds = map[string]bool{
	"chat":         true,
	"whiteboard":   true,
	"participants": true,
	"status":       true,
}

// realtimeAccessService decides who may attach to a broadcast topic: group
// topics need membership, session topics need enrollment or ownership.
type realtimeAccessService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewRealtimeAccessService(uowFactory unitofwork.RepositoryFactory) websocket.TopicAuthorizer {
	return &realtimeAccessService{uowFactory: uowFactory}
}

func (s *realtimeAccessService) CanAccess(ctx context.Context, userID uuid.UUID, topic string) (bool, error) {
	if groupID, ok := parseGroupTopic(topic); ok {
		return s.canAccessGroup(ctx, userID, groupID)
	}
	if sessionID, kind, ok := websocket.ParseSessionTopic(topic); ok && sessionTopicKinds[kind] {
		return s.canAccessSession(ctx, userID, sessionID)
	}
	return false, nil
}

func (s *realtimeAccessService) canAccessGroup(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	group, err := uow.GroupRepository().FindOne(ctx, specification.ByID{ID: groupID})
	if err != nil {
		return false, err
	}
	if group == nil {
		return false, nil
	}
	if group.CreatorId == userID {
		return true, nil
	}
	return uow.GroupRepository().IsMember(ctx, groupID, userID)
}

func (s *realtimeAccessService) canAccessSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}
	if session.OwnerId == userID {
		return true, nil
	}

	participant, err := uow.ParticipantRepository().FindOne(ctx,
		specification.BySession{SessionID: sessionID},
		specification.ByUser{UserID: userID},
	)
	if err != nil {
		return false, err
	}
	return participant != nil, nil
}

func parseGroupTopic(topic string) (uuid.UUID, bool) {
	rest, found := strings.CutPrefix(topic, "group/")
	if !found {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
