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
	"github.com/samber/lo"
)

const previewLength = 80

type IChatService interface {
	Send(ctx context.Context, groupID, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	MarkGroupRead(ctx context.Context, userID, groupID uuid.UUID) (*dto.MarkGroupReadResponse, error)
	UnreadSummary(ctx context.Context, userID uuid.UUID) (*dto.UnreadSummaryResponse, error)
	History(ctx context.Context, groupID, userID uuid.UUID, req *dto.HistoryRequest) ([]*dto.MessageResponse, error)
	PinnedMessages(ctx context.Context, groupID, userID uuid.UUID) ([]*dto.MessageResponse, error)
	Pin(ctx context.Context, messageID, userID uuid.UUID) error
	Unpin(ctx context.Context, messageID, userID uuid.UUID) error
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	broadcaster    IBroadcastPublisher
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	broadcaster IBroadcastPublisher,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		broadcaster:    broadcaster,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *chatService) Send(ctx context.Context, groupID, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	msgType := entity.MessageType(req.Type)
	if msgType == "" {
		msgType = entity.MessageTypeText
	}

	var (
		message    *entity.Message
		sender     *entity.User
		recipients []uuid.UUID
	)

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		group, err := uow.GroupRepository().FindOne(ctx, specification.ByID{ID: groupID})
		if err != nil {
			return err
		}
		if group == nil {
			return apperror.NewNotFound("group", "group %s not found", groupID)
		}

		if err := s.requireMembership(ctx, uow, group, senderID); err != nil {
			return err
		}

		sender, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: senderID})
		if err != nil {
			return err
		}
		if sender == nil {
			return apperror.NewNotFound("user", "user %s not found", senderID)
		}

		now := time.Now()
		message = &entity.Message{
			Id:           uuid.New(),
			GroupId:      groupID,
			SenderId:     senderID,
			Content:      req.Content,
			Type:         msgType,
			AttachmentId: req.AttachmentId,
			CreatedAt:    now,
		}
		if err := uow.MessageRepository().Create(ctx, message); err != nil {
			return err
		}

		// Recipient set: every member plus the creator, deduplicated. The
		// receipts commit with the message or not at all.
		memberIDs, err := uow.GroupRepository().MemberIDs(ctx, groupID)
		if err != nil {
			return err
		}
		recipients = lo.Uniq(append(memberIDs, group.CreatorId))

		receipts := make([]*entity.Receipt, len(recipients))
		for i, recipientID := range recipients {
			receipt := &entity.Receipt{
				Id:          uuid.New(),
				MessageId:   message.Id,
				RecipientId: recipientID,
				CreatedAt:   now,
			}
			// The sender has read their own message the moment they sent it.
			if recipientID == senderID {
				receipt.IsRead = true
				readAt := now
				receipt.ReadAt = &readAt
			}
			receipts[i] = receipt
		}
		return uow.ReceiptRepository().CreateBulk(ctx, receipts)
	})
	if err != nil {
		return nil, err
	}

	s.publishChatEvent(ctx, message, sender)
	if s.eventPublisher != nil {
		offline := lo.Without(recipients, senderID)
		if err := s.eventPublisher.Publish(ctx, events.NewMessageSent(message.Id, groupID, senderID, offline)); err != nil {
			s.logger.Warn("ChatService", "Message event publish failed", map[string]interface{}{"message_id": message.Id, "error": err.Error()})
		}
	}

	return toMessageResponse(message, sender.FullName), nil
}

func (s *chatService) MarkGroupRead(ctx context.Context, userID, groupID uuid.UUID) (*dto.MarkGroupReadResponse, error) {
	var updated int64

	err := runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		updated, err = uow.ReceiptRepository().MarkGroupRead(ctx, userID, groupID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	return &dto.MarkGroupReadResponse{Updated: updated}, nil
}

func (s *chatService) UnreadSummary(ctx context.Context, userID uuid.UUID) (*dto.UnreadSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.ReceiptRepository().UnreadTotal(ctx, userID)
	if err != nil {
		return nil, err
	}

	groups, err := uow.ReceiptRepository().UnreadByGroup(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.GroupUnreadDTO, len(groups))
	for i, g := range groups {
		items[i] = &dto.GroupUnreadDTO{
			GroupId:     g.GroupId,
			GroupName:   g.GroupName,
			UnreadCount: g.UnreadCount,
			Preview:     truncate(g.LatestPreview, previewLength),
			PreviewAt:   g.LatestAt,
		}
	}

	return &dto.UnreadSummaryResponse{Total: total, Groups: items}, nil
}

func (s *chatService) History(ctx context.Context, groupID, userID uuid.UUID, req *dto.HistoryRequest) ([]*dto.MessageResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	group, err := uow.GroupRepository().FindOne(ctx, specification.ByID{ID: groupID})
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperror.NewNotFound("group", "group %s not found", groupID)
	}
	if err := s.requireMembership(ctx, uow, group, userID); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByGroup{GroupID: groupID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	if err != nil {
		return nil, err
	}

	senderIDs := lo.Uniq(lo.Map(messages, func(m *entity.Message, _ int) uuid.UUID { return m.SenderId }))
	names := map[uuid.UUID]string{}
	if len(senderIDs) > 0 {
		users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: senderIDs})
		if err != nil {
			return nil, err
		}
		names = lo.SliceToMap(users, func(u *entity.User) (uuid.UUID, string) { return u.Id, u.FullName })
	}

	res := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		res[i] = toMessageResponse(m, names[m.SenderId])
	}
	return res, nil
}

// PinnedMessages lists the group's pinned messages, oldest first.
func (s *chatService) PinnedMessages(ctx context.Context, groupID, userID uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	group, err := uow.GroupRepository().FindOne(ctx, specification.ByID{ID: groupID})
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperror.NewNotFound("group", "group %s not found", groupID)
	}
	if err := s.requireMembership(ctx, uow, group, userID); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByGroup{GroupID: groupID},
		specification.Pinned{},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	senderIDs := lo.Uniq(lo.Map(messages, func(m *entity.Message, _ int) uuid.UUID { return m.SenderId }))
	names := map[uuid.UUID]string{}
	if len(senderIDs) > 0 {
		users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: senderIDs})
		if err != nil {
			return nil, err
		}
		names = lo.SliceToMap(users, func(u *entity.User) (uuid.UUID, string) { return u.Id, u.FullName })
	}

	res := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		res[i] = toMessageResponse(m, names[m.SenderId])
	}
	return res, nil
}

func (s *chatService) Pin(ctx context.Context, messageID, userID uuid.UUID) error {
	return s.setPinned(ctx, messageID, userID, true)
}

func (s *chatService) Unpin(ctx context.Context, messageID, userID uuid.UUID) error {
	return s.setPinned(ctx, messageID, userID, false)
}

func (s *chatService) setPinned(ctx context.Context, messageID, userID uuid.UUID, pinned bool) error {
	return runInTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		message, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageID})
		if err != nil {
			return err
		}
		if message == nil {
			return apperror.NewNotFound("message", "message %s not found", messageID)
		}

		group, err := uow.GroupRepository().FindOne(ctx, specification.ByID{ID: message.GroupId})
		if err != nil {
			return err
		}
		if group == nil {
			return apperror.NewNotFound("group", "group %s not found", message.GroupId)
		}
		if err := s.requireMembership(ctx, uow, group, userID); err != nil {
			return err
		}

		if message.IsPinned == pinned {
			return nil
		}
		message.IsPinned = pinned
		return uow.MessageRepository().Update(ctx, message)
	})
}

// requireMembership admits group members and the group creator.
func (s *chatService) requireMembership(ctx context.Context, uow unitofwork.UnitOfWork, group *entity.StudyGroup, userID uuid.UUID) error {
	if group.CreatorId == userID {
		return nil
	}
	member, err := uow.GroupRepository().IsMember(ctx, group.Id, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperror.NewForbidden("user is not a member of this group")
	}
	return nil
}

func (s *chatService) publishChatEvent(ctx context.Context, message *entity.Message, sender *entity.User) {
	payload := dto.ChatEventPayload{
		Id:         message.Id,
		GroupId:    &message.GroupId,
		SenderId:   message.SenderId,
		SenderName: sender.FullName,
		Content:    message.Content,
		Type:       string(message.Type),
		Timestamp:  message.CreatedAt,
	}
	if err := s.broadcaster.Publish(ctx, websocket.GroupTopic(message.GroupId), payload); err != nil {
		s.logger.Warn("ChatService", "Chat broadcast failed", map[string]interface{}{"message_id": message.Id, "error": err.Error()})
	}
}

func toMessageResponse(message *entity.Message, senderName string) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:           message.Id,
		GroupId:      message.GroupId,
		SenderId:     message.SenderId,
		SenderName:   senderName,
		Content:      message.Content,
		Type:         string(message.Type),
		AttachmentId: message.AttachmentId,
		IsPinned:     message.IsPinned,
		CreatedAt:    message.CreatedAt,
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
