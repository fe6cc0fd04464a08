package service

import (
	"context"
	"time"

	"studysync-be/internal/apperror"
	"studysync-be/internal/dto"
	"studysync-be/internal/entity"
	"studysync-be/internal/pkg/logger"
	"studysync-be/internal/repository/memory"
	"studysync-be/internal/repository/specification"
	"studysync-be/internal/repository/unitofwork"
	"studysync-be/internal/websocket"
	"studysync-be/pkg/events"
	pktNats "studysync-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IEnrollmentService interface {
	Join(ctx context.Context, sessionID, userID uuid.UUID) (*dto.JoinSessionResponse, error)
	Leave(ctx context.Context, sessionID, userID uuid.UUID) error
	Confirm(ctx context.Context, sessionID, userID uuid.UUID) error
	Roster(ctx context.Context, sessionID uuid.UUID) (*dto.RosterResponse, error)
}

type enrollmentService struct {
	uowFactory     unitofwork.RepositoryFactory
	broadcaster    IBroadcastPublisher
	eventPublisher *pktNats.Publisher
	presence       *memory.PresenceRepository
	logger         logger.ILogger
}

func NewEnrollmentService(
	uowFactory unitofwork.RepositoryFactory,
	broadcaster IBroadcastPublisher,
	eventPublisher *pktNats.Publisher,
	presence *memory.PresenceRepository,
	log logger.ILogger,
) IEnrollmentService {
	return &enrollmentService{
		uowFactory:     uowFactory,
		broadcaster:    broadcaster,
		eventPublisher: eventPublisher,
		presence:       presence,
		logger:         log,
	}
}

func (s *enrollmentService) Join(ctx context.Context, sessionID, userID uuid.UUID) (*dto.JoinSessionResponse, error) {
	var (
		session     *entity.Session
		participant *entity.Participant
		user        *entity.User
	)

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		// The row lock makes the capacity check and counter increment one
		// atomic step; concurrent joins queue up behind it.
		session, err = uow.SessionRepository().FindOneForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return apperror.NewNotFound("session", "session %s not found", sessionID)
		}
		if session.IsTerminal() {
			return apperror.NewConflict("session is %s", session.Status)
		}

		user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.NewNotFound("user", "user %s not found", userID)
		}

		if session.Type == entity.SessionTypeOneOnOne && session.StudentId != nil && *session.StudentId != userID {
			return apperror.NewForbidden("session is reserved for another student")
		}

		existing, err := uow.ParticipantRepository().FindOne(ctx,
			specification.BySession{SessionID: sessionID},
			specification.ByUser{UserID: userID},
		)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewConflict("user already registered for this session")
		}

		if session.CurrentParticipants >= session.MaxParticipants {
			return apperror.NewConflict("session is full (%d/%d)", session.CurrentParticipants, session.MaxParticipants)
		}

		now := time.Now()
		participant = &entity.Participant{
			Id:           uuid.New(),
			SessionId:    sessionID,
			UserId:       userID,
			Status:       entity.ParticipantStatusRegistered,
			RegisteredAt: now,
		}
		// Joining a live session counts as attendance.
		if session.Status == entity.SessionStatusInProgress {
			participant.Status = entity.ParticipantStatusAttended
			participant.JoinedAt = &now
		}
		if err := uow.ParticipantRepository().Create(ctx, participant); err != nil {
			return err
		}

		session.CurrentParticipants++
		session.UpdatedAt = &now
		return uow.SessionRepository().Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.publishParticipantEvent(ctx, session, user, "join")
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewParticipantJoined(session.Id, session.OwnerId, userID, user.FullName)); err != nil {
			s.logger.Warn("EnrollmentService", "Join event publish failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		}
	}

	return &dto.JoinSessionResponse{
		ParticipantId:       participant.Id,
		SessionId:           session.Id,
		Status:              string(participant.Status),
		CurrentParticipants: session.CurrentParticipants,
		MaxParticipants:     session.MaxParticipants,
	}, nil
}

func (s *enrollmentService) Leave(ctx context.Context, sessionID, userID uuid.UUID) error {
	var (
		session *entity.Session
		user    *entity.User
	)

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		session, err = uow.SessionRepository().FindOneForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return apperror.NewNotFound("session", "session %s not found", sessionID)
		}

		participant, err := uow.ParticipantRepository().FindOne(ctx,
			specification.BySession{SessionID: sessionID},
			specification.ByUser{UserID: userID},
		)
		if err != nil {
			return err
		}
		if participant == nil {
			return apperror.NewNotFound("participant", "user %s is not registered for session %s", userID, sessionID)
		}

		user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
		if err != nil {
			return err
		}

		if err := uow.ParticipantRepository().Delete(ctx, participant.Id); err != nil {
			return err
		}

		// Counter never goes negative even if it drifted.
		if session.CurrentParticipants > 0 {
			session.CurrentParticipants--
		}
		now := time.Now()
		session.UpdatedAt = &now
		return uow.SessionRepository().Update(ctx, session)
	})
	if err != nil {
		return err
	}

	s.publishParticipantEvent(ctx, session, user, "leave")
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewParticipantLeft(session.Id, session.OwnerId, userID)); err != nil {
			s.logger.Warn("EnrollmentService", "Leave event publish failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		}
	}
	return nil
}

func (s *enrollmentService) Confirm(ctx context.Context, sessionID, userID uuid.UUID) error {
	return runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		participant, err := uow.ParticipantRepository().FindOne(ctx,
			specification.BySession{SessionID: sessionID},
			specification.ByUser{UserID: userID},
		)
		if err != nil {
			return err
		}
		if participant == nil {
			return apperror.NewNotFound("participant", "user %s is not registered for session %s", userID, sessionID)
		}
		if participant.Status != entity.ParticipantStatusRegistered {
			return apperror.NewState("cannot confirm a %s participant", participant.Status)
		}

		participant.Status = entity.ParticipantStatusConfirmed
		return uow.ParticipantRepository().Update(ctx, participant)
	})
}

func (s *enrollmentService) Roster(ctx context.Context, sessionID uuid.UUID) (*dto.RosterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFound("session", "session %s not found", sessionID)
	}

	participants, err := uow.ParticipantRepository().FindAll(ctx,
		specification.BySession{SessionID: sessionID},
		specification.OrderBy{Field: "registered_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	userIDs := lo.Map(participants, func(p *entity.Participant, _ int) uuid.UUID { return p.UserId })
	names := map[uuid.UUID]string{}
	if len(userIDs) > 0 {
		users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: userIDs})
		if err != nil {
			return nil, err
		}
		names = lo.SliceToMap(users, func(u *entity.User) (uuid.UUID, string) { return u.Id, u.FullName })
	}

	// Live occupancy comes from the presence store, not the database.
	online := map[uuid.UUID]bool{}
	if s.presence != nil {
		for _, p := range s.presence.List(sessionID) {
			online[p.UserId] = true
		}
	}

	entries := make([]*dto.RosterEntry, len(participants))
	for i, p := range participants {
		entries[i] = &dto.RosterEntry{
			ParticipantId: p.Id,
			UserId:        p.UserId,
			FullName:      names[p.UserId],
			Status:        string(p.Status),
			Online:        online[p.UserId],
			RegisteredAt:  p.RegisteredAt,
			JoinedAt:      p.JoinedAt,
		}
	}

	return &dto.RosterResponse{SessionId: sessionID, OnlineCount: len(online), Participants: entries}, nil
}

func (s *enrollmentService) publishParticipantEvent(ctx context.Context, session *entity.Session, user *entity.User, kind string) {
	payload := dto.ParticipantEventPayload{
		Type:      kind,
		Timestamp: time.Now(),
	}
	if user != nil {
		payload.Participant = dto.ParticipantEventUser{
			Id:   user.Id,
			Name: user.FullName,
			Role: string(user.Role),
		}
	}
	if err := s.broadcaster.Publish(ctx, websocket.SessionTopic(session.Id, "participants"), payload); err != nil {
		s.logger.Warn("EnrollmentService", "Participant broadcast failed", map[string]interface{}{"session_id": session.Id, "error": err.Error()})
	}
}
