package service

import (
	"context"
	"fmt"

	"studysync-be/internal/entity"
	"studysync-be/internal/pkg/logger"
	"studysync-be/internal/pkg/mailer"
	"studysync-be/internal/repository/specification"
	"studysync-be/internal/repository/unitofwork"
	"studysync-be/pkg/events"
	pktNats "studysync-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type INotificationService interface {
	Start() error
}

// notificationService drains the NATS event stream and pushes the offline
// channels: email for session lifecycle, log-only for the rest. Failures here
// never reach the request path.
type notificationService struct {
	subscriber     *pktNats.Subscriber
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	meetingBaseURL string
	logger         logger.ILogger
}

func NewNotificationService(
	subscriber *pktNats.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	meetingBaseURL string,
	log logger.ILogger,
) INotificationService {
	return &notificationService{
		subscriber:     subscriber,
		uowFactory:     uowFactory,
		emailService:   emailService,
		meetingBaseURL: meetingBaseURL,
		logger:         log,
	}
}

func (s *notificationService) Start() error {
	if s.subscriber == nil {
		s.logger.Warn("Notification", "NATS subscriber not configured, notifications disabled", nil)
		return nil
	}
	return s.subscriber.Subscribe("events.>", "studysync-notifications", s.handle)
}

func (s *notificationService) handle(ctx context.Context, event events.Event) error {
	switch event.EventType() {
	case events.TypeSessionCancelled:
		return s.notifySessionCancelled(ctx, event)
	case events.TypeSessionStarting:
		return s.notifySessionStarted(ctx, event)
	default:
		s.logger.Info("Notification", "Event observed", map[string]interface{}{"type": event.EventType()})
		return nil
	}
}

func (s *notificationService) notifySessionCancelled(ctx context.Context, event events.Event) error {
	sessionID, err := payloadUUID(event, "session_id")
	if err != nil {
		s.logger.Warn("Notification", "Malformed event payload", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		return nil
	}
	title, _ := event.Payload()["title"].(string)
	reason, _ := event.Payload()["reason"].(string)

	recipients, err := s.participantEmails(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, email := range recipients {
		if err := s.emailService.SendSessionCancelled(email, title, reason); err != nil {
			s.logger.Warn("Notification", "Cancellation email failed", map[string]interface{}{"to": email, "error": err.Error()})
		}
	}
	return nil
}

func (s *notificationService) notifySessionStarted(ctx context.Context, event events.Event) error {
	sessionID, err := payloadUUID(event, "session_id")
	if err != nil {
		s.logger.Warn("Notification", "Malformed event payload", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		return nil
	}
	title, _ := event.Payload()["title"].(string)
	meetingURL := fmt.Sprintf("%s/%s", s.meetingBaseURL, RoomName(sessionID))

	recipients, err := s.participantEmails(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, email := range recipients {
		if err := s.emailService.SendSessionStarting(email, title, meetingURL); err != nil {
			s.logger.Warn("Notification", "Session-starting email failed", map[string]interface{}{"to": email, "error": err.Error()})
		}
	}
	return nil
}

func (s *notificationService) participantEmails(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	participants, err := uow.ParticipantRepository().FindAll(ctx, specification.BySession{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, nil
	}

	userIDs := lo.Map(participants, func(p *entity.Participant, _ int) uuid.UUID { return p.UserId })
	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: userIDs})
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u *entity.User, _ int) string { return u.Email }), nil
}

func payloadUUID(event events.Event, key string) (uuid.UUID, error) {
	raw, ok := event.Payload()[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("payload key %q missing or not a string", key)
	}
	return uuid.Parse(raw)
}
