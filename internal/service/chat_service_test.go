package service

import (
	"context"
	"testing"
	"time"

	"studysync-be/internal/apperror"
	"studysync-be/internal/dto"
	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendReq(content string) *dto.SendMessageRequest {
	return &dto.SendMessageRequest{Content: content}
}

func (f *fixture) receiptsFor(t *testing.T, messageID uuid.UUID) []*entity.Receipt {
	t.Helper()
	ctx := context.Background()
	uow := f.uowFactory.NewUnitOfWork(ctx)
	receipts, err := uow.ReceiptRepository().FindAll(ctx, specification.ByMessage{MessageID: messageID})
	require.NoError(t, err)
	return receipts
}

func TestSendMessageCreatesReceiptPerRecipient(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	bob := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice, bob)
	svc := f.chatService()

	res, err := svc.Send(context.Background(), group.Id, alice.Id, sendReq("hello"))
	require.NoError(t, err)
	assert.Equal(t, string(entity.MessageTypeText), res.Type)
	assert.Equal(t, alice.FullName, res.SenderName)

	receipts := f.receiptsFor(t, res.Id)
	require.Len(t, receipts, 3) // alice, bob, creator

	byRecipient := map[uuid.UUID]*entity.Receipt{}
	for _, r := range receipts {
		byRecipient[r.RecipientId] = r
	}
	require.Contains(t, byRecipient, alice.Id)
	require.Contains(t, byRecipient, bob.Id)
	require.Contains(t, byRecipient, creator.Id)

	assert.True(t, byRecipient[alice.Id].IsRead, "sender receipt is pre-read")
	assert.NotNil(t, byRecipient[alice.Id].ReadAt)
	assert.False(t, byRecipient[bob.Id].IsRead)
	assert.False(t, byRecipient[creator.Id].IsRead)
}

func TestSendMessageDedupsCreatorMembership(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	// The creator also holds a member row.
	group := f.seedGroup(t, creator, creator, alice)
	svc := f.chatService()

	res, err := svc.Send(context.Background(), group.Id, alice.Id, sendReq("hi"))
	require.NoError(t, err)

	assert.Len(t, f.receiptsFor(t, res.Id), 2)
}

func TestSendMessageRequiresMembership(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	stranger := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice)
	svc := f.chatService()
	ctx := context.Background()

	_, err := svc.Send(ctx, group.Id, stranger.Id, sendReq("let me in"))
	assert.True(t, apperror.IsForbidden(err))

	// The creator can post without a member row.
	_, err = svc.Send(ctx, group.Id, creator.Id, sendReq("welcome"))
	assert.NoError(t, err)
}

func TestSendMessageUnknownGroup(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, entity.UserRoleStudent)

	_, err := f.chatService().Send(context.Background(), uuid.New(), alice.Id, sendReq("hello?"))
	assert.True(t, apperror.IsNotFound(err))
}

func TestSendBroadcastsToGroupTopic(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice)

	res, err := f.chatService().Send(context.Background(), group.Id, alice.Id, sendReq("ping"))
	require.NoError(t, err)

	events := f.broadcast.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, "group/"+group.Id.String(), events[0].Topic)

	payload, ok := events[0].Payload.(dto.ChatEventPayload)
	require.True(t, ok)
	assert.Equal(t, res.Id, payload.Id)
	assert.Equal(t, "ping", payload.Content)
	assert.Equal(t, alice.FullName, payload.SenderName)
}

func TestMarkGroupReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	bob := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice, bob)
	svc := f.chatService()
	ctx := context.Background()

	_, err := svc.Send(ctx, group.Id, alice.Id, sendReq("one"))
	require.NoError(t, err)
	_, err = svc.Send(ctx, group.Id, alice.Id, sendReq("two"))
	require.NoError(t, err)

	res, err := svc.MarkGroupRead(ctx, bob.Id, group.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Updated)

	res, err = svc.MarkGroupRead(ctx, bob.Id, group.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Updated)
}

func TestUnreadSummary(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	bob := f.seedUser(t, entity.UserRoleStudent)
	mathGroup := f.seedGroup(t, creator, alice, bob)
	bioGroup := f.seedGroup(t, creator, alice, bob)
	svc := f.chatService()
	ctx := context.Background()

	_, err := svc.Send(ctx, mathGroup.Id, alice.Id, sendReq("first"))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.Send(ctx, mathGroup.Id, alice.Id, sendReq("second"))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.Send(ctx, bioGroup.Id, alice.Id, sendReq("third"))
	require.NoError(t, err)

	summary, err := svc.UnreadSummary(ctx, bob.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	require.Len(t, summary.Groups, 2)

	byGroup := map[uuid.UUID]*dto.GroupUnreadDTO{}
	for _, g := range summary.Groups {
		byGroup[g.GroupId] = g
	}
	require.Contains(t, byGroup, mathGroup.Id)
	assert.Equal(t, int64(2), byGroup[mathGroup.Id].UnreadCount)
	assert.Equal(t, "second", byGroup[mathGroup.Id].Preview)
	assert.Equal(t, int64(1), byGroup[bioGroup.Id].UnreadCount)

	// The sender has nothing unread.
	aliceSummary, err := svc.UnreadSummary(ctx, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), aliceSummary.Total)
	assert.Empty(t, aliceSummary.Groups)
}

func TestUnreadPreviewTruncation(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	bob := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice, bob)
	svc := f.chatService()
	ctx := context.Background()

	long := ""
	for i := 0; i < 120; i++ {
		long += "a"
	}
	_, err := svc.Send(ctx, group.Id, alice.Id, sendReq(long))
	require.NoError(t, err)

	summary, err := svc.UnreadSummary(ctx, bob.Id)
	require.NoError(t, err)
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, long[:previewLength]+"…", summary.Groups[0].Preview)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	stranger := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice)
	svc := f.chatService()
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := svc.Send(ctx, group.Id, alice.Id, sendReq(content))
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	history, err := svc.History(ctx, group.Id, alice.Id, &dto.HistoryRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	assert.Equal(t, "three", history[0].Content)
	assert.Equal(t, "two", history[1].Content)
	assert.Equal(t, alice.FullName, history[0].SenderName)

	_, err = svc.History(ctx, group.Id, stranger.Id, &dto.HistoryRequest{})
	assert.True(t, apperror.IsForbidden(err))
}

func TestPinUnpin(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	stranger := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice)
	svc := f.chatService()
	ctx := context.Background()

	msg, err := svc.Send(ctx, group.Id, alice.Id, sendReq("important"))
	require.NoError(t, err)

	require.NoError(t, svc.Pin(ctx, msg.Id, creator.Id))

	history, err := svc.History(ctx, group.Id, alice.Id, &dto.HistoryRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].IsPinned)

	assert.True(t, apperror.IsForbidden(svc.Pin(ctx, msg.Id, stranger.Id)))

	require.NoError(t, svc.Unpin(ctx, msg.Id, alice.Id))
	history, err = svc.History(ctx, group.Id, alice.Id, &dto.HistoryRequest{})
	require.NoError(t, err)
	assert.False(t, history[0].IsPinned)
}

func TestPinnedListing(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	stranger := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice)
	svc := f.chatService()
	ctx := context.Background()

	first, err := svc.Send(ctx, group.Id, alice.Id, sendReq("rules"))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := svc.Send(ctx, group.Id, creator.Id, sendReq("schedule"))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.Send(ctx, group.Id, alice.Id, sendReq("chatter"))
	require.NoError(t, err)

	require.NoError(t, svc.Pin(ctx, first.Id, creator.Id))
	require.NoError(t, svc.Pin(ctx, second.Id, creator.Id))

	pinned, err := svc.PinnedMessages(ctx, group.Id, alice.Id)
	require.NoError(t, err)
	require.Len(t, pinned, 2)
	assert.Equal(t, "rules", pinned[0].Content)
	assert.Equal(t, "schedule", pinned[1].Content)

	_, err = svc.PinnedMessages(ctx, group.Id, stranger.Id)
	assert.True(t, apperror.IsForbidden(err))

	require.NoError(t, svc.Unpin(ctx, first.Id, creator.Id))
	pinned, err = svc.PinnedMessages(ctx, group.Id, alice.Id)
	require.NoError(t, err)
	require.Len(t, pinned, 1)
	assert.Equal(t, second.Id, pinned[0].Id)
}

func TestMarkGroupReadSkipsDeletedMessages(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, entity.UserRoleExpert)
	alice := f.seedUser(t, entity.UserRoleStudent)
	bob := f.seedUser(t, entity.UserRoleStudent)
	group := f.seedGroup(t, creator, alice, bob)
	svc := f.chatService()
	ctx := context.Background()

	_, err := svc.Send(ctx, group.Id, alice.Id, sendReq("kept"))
	require.NoError(t, err)
	removed, err := svc.Send(ctx, group.Id, alice.Id, sendReq("removed"))
	require.NoError(t, err)

	// Soft-delete one of the two unread messages.
	uow := f.uowFactory.NewUnitOfWork(ctx)
	msg, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: removed.Id})
	require.NoError(t, err)
	now := time.Now()
	msg.DeletedAt = &now
	require.NoError(t, uow.MessageRepository().Update(ctx, msg))

	// The summary excludes the deleted message, so the marked count must too.
	summary, err := svc.UnreadSummary(ctx, bob.Id)
	require.NoError(t, err)
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, int64(1), summary.Groups[0].UnreadCount)

	res, err := svc.MarkGroupRead(ctx, bob.Id, group.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)
}
