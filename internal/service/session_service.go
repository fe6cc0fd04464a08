package service

import (
	"context"
	"time"

	"studysync-be/internal/apperror"
	"studysync-be/internal/dto"
	"studysync-be/internal/entity"
	"studysync-be/internal/pkg/logger"
	"studysync-be/internal/repository/specification"
	"studysync-be/internal/repository/unitofwork"
	"studysync-be/internal/websocket"
	"studysync-be/pkg/events"
	pktNats "studysync-be/pkg/nats"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*dto.SessionResponse, error)
	Start(ctx context.Context, sessionID, actorID uuid.UUID) (*dto.SessionResponse, error)
	Complete(ctx context.Context, sessionID, actorID uuid.UUID, req *dto.CompleteSessionRequest) (*dto.SessionResponse, error)
	Cancel(ctx context.Context, sessionID, actorID uuid.UUID, req *dto.CancelSessionRequest) (*dto.SessionResponse, error)
	CanEnterRoom(ctx context.Context, sessionID uuid.UUID) (*dto.CanEnterRoomResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	broadcaster    IBroadcastPublisher
	eventPublisher *pktNats.Publisher
	graceBefore    time.Duration
	graceAfter     time.Duration
	logger         logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	broadcaster IBroadcastPublisher,
	eventPublisher *pktNats.Publisher,
	graceBefore time.Duration,
	graceAfter time.Duration,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		broadcaster:    broadcaster,
		eventPublisher: eventPublisher,
		graceBefore:    graceBefore,
		graceAfter:     graceAfter,
		logger:         log,
	}
}

func (s *sessionService) Create(ctx context.Context, ownerID uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if !req.ScheduledStart.Before(req.ScheduledEnd) {
		return nil, apperror.NewValidation("scheduled_start must be before scheduled_end")
	}
	if req.Type == string(entity.SessionTypeOneOnOne) && req.MaxParticipants != 1 {
		return nil, apperror.NewValidation("ONE_ON_ONE sessions hold exactly one participant")
	}

	session := &entity.Session{
		Id:              uuid.New(),
		OwnerId:         ownerID,
		StudentId:       req.StudentId,
		GroupId:         req.GroupId,
		CourseId:        req.CourseId,
		Type:            entity.SessionType(req.Type),
		Status:          entity.SessionStatusScheduled,
		Title:           req.Title,
		ScheduledStart:  req.ScheduledStart,
		ScheduledEnd:    req.ScheduledEnd,
		MaxParticipants: req.MaxParticipants,
		CreatedAt:       time.Now(),
	}

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		// Lock the owner row so two concurrent creates for the same owner
		// cannot both pass the overlap check.
		owner, err := uow.UserRepository().FindOneForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return apperror.NewNotFound("user", "owner %s not found", ownerID)
		}

		clashes, err := uow.SessionRepository().Count(ctx,
			specification.ByOwner{OwnerID: ownerID},
			specification.NotCancelled{},
			specification.OverlappingWindow{Start: req.ScheduledStart, End: req.ScheduledEnd},
		)
		if err != nil {
			return err
		}
		if clashes > 0 {
			return apperror.NewConflict("owner already has a session overlapping [%s, %s)",
				req.ScheduledStart.Format(time.RFC3339), req.ScheduledEnd.Format(time.RFC3339))
		}

		return uow.SessionRepository().Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	return toSessionResponse(session), nil
}

func (s *sessionService) Show(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFound("session", "session %s not found", id)
	}
	return toSessionResponse(session), nil
}

func (s *sessionService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ByOwner{OwnerID: ownerID},
		specification.OrderBy{Field: "scheduled_start", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, len(sessions))
	for i, session := range sessions {
		res[i] = toSessionResponse(session)
	}
	return res, nil
}

func (s *sessionService) Start(ctx context.Context, sessionID, actorID uuid.UUID) (*dto.SessionResponse, error) {
	var session *entity.Session

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		session, err = s.findOwnedForUpdate(ctx, uow, sessionID, actorID)
		if err != nil {
			return err
		}
		if session.Status != entity.SessionStatusScheduled {
			return apperror.NewState("cannot start a %s session", session.Status)
		}

		now := time.Now()
		session.Status = entity.SessionStatusInProgress
		session.ActualStart = &now
		session.UpdatedAt = &now
		return uow.SessionRepository().Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, session)
	s.publishEvent(ctx, events.NewSessionStarted(session.Id, session.OwnerId, session.Title))
	return toSessionResponse(session), nil
}

func (s *sessionService) Complete(ctx context.Context, sessionID, actorID uuid.UUID, req *dto.CompleteSessionRequest) (*dto.SessionResponse, error) {
	var session *entity.Session

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		session, err = s.findOwnedForUpdate(ctx, uow, sessionID, actorID)
		if err != nil {
			return err
		}
		if session.Status != entity.SessionStatusInProgress {
			return apperror.NewState("cannot complete a %s session", session.Status)
		}

		now := time.Now()
		session.Status = entity.SessionStatusCompleted
		session.ActualEnd = &now
		session.Summary = req.Summary
		session.UpdatedAt = &now
		return uow.SessionRepository().Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, session)
	return toSessionResponse(session), nil
}

func (s *sessionService) Cancel(ctx context.Context, sessionID, actorID uuid.UUID, req *dto.CancelSessionRequest) (*dto.SessionResponse, error) {
	var session *entity.Session

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		session, err = s.findOwnedForUpdate(ctx, uow, sessionID, actorID)
		if err != nil {
			return err
		}
		if session.Status != entity.SessionStatusScheduled {
			return apperror.NewState("cannot cancel a %s session", session.Status)
		}

		now := time.Now()
		session.Status = entity.SessionStatusCancelled
		session.CancelReason = &req.Reason
		session.CancelledBy = &actorID
		session.UpdatedAt = &now
		return uow.SessionRepository().Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, session)
	s.publishEvent(ctx, events.NewSessionCancelled(session.Id, session.OwnerId, actorID, session.Title, req.Reason))
	return toSessionResponse(session), nil
}

func (s *sessionService) CanEnterRoom(ctx context.Context, sessionID uuid.UUID) (*dto.CanEnterRoomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFound("session", "session %s not found", sessionID)
	}

	now := time.Now()
	return &dto.CanEnterRoomResponse{
		CanEnter: CanEnterWindow(session, now, s.graceBefore, s.graceAfter),
		Status:   string(session.Status),
		Now:      now,
	}, nil
}

// CanEnterWindow is the room-entry predicate shared with meeting credential
// issuance: non-terminal status and now inside the grace-padded window.
func CanEnterWindow(session *entity.Session, now time.Time, graceBefore, graceAfter time.Duration) bool {
	if session.IsTerminal() {
		return false
	}
	opensAt := session.ScheduledStart.Add(-graceBefore)
	closesAt := session.ScheduledEnd.Add(graceAfter)
	return !now.Before(opensAt) && now.Before(closesAt)
}

// findOwnedForUpdate loads + row-locks a session and enforces ownership.
// Transitions must run behind this lock so concurrent actors serialize.
func (s *sessionService) findOwnedForUpdate(ctx context.Context, uow unitofwork.UnitOfWork, sessionID, actorID uuid.UUID) (*entity.Session, error) {
	session, err := uow.SessionRepository().FindOneForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFound("session", "session %s not found", sessionID)
	}
	if session.OwnerId != actorID {
		return nil, apperror.NewForbidden("only the session owner may do this")
	}
	return session, nil
}

func (s *sessionService) publishStatus(ctx context.Context, session *entity.Session) {
	payload := dto.StatusEventPayload{
		Status:    string(session.Status),
		Timestamp: time.Now(),
	}
	if err := s.broadcaster.Publish(ctx, websocket.SessionTopic(session.Id, "status"), payload); err != nil {
		s.logger.Warn("SessionService", "Status broadcast failed", map[string]interface{}{"session_id": session.Id, "error": err.Error()})
	}
}

func (s *sessionService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("SessionService", "Event publish failed", map[string]interface{}{"type": evt.EventType(), "error": err.Error()})
	}
}

func toSessionResponse(session *entity.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:                  session.Id,
		OwnerId:             session.OwnerId,
		StudentId:           session.StudentId,
		GroupId:             session.GroupId,
		CourseId:            session.CourseId,
		Type:                string(session.Type),
		Status:              string(session.Status),
		Title:               session.Title,
		ScheduledStart:      session.ScheduledStart,
		ScheduledEnd:        session.ScheduledEnd,
		ActualStart:         session.ActualStart,
		ActualEnd:           session.ActualEnd,
		Summary:             session.Summary,
		MaxParticipants:     session.MaxParticipants,
		CurrentParticipants: session.CurrentParticipants,
		CancelReason:        session.CancelReason,
		CreatedAt:           session.CreatedAt,
	}
}
