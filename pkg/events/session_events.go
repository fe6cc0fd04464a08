package events

import (
	"time"

	"github.com/google/uuid"
)

// Event codes consumed by the notification worker. The websocket hub has its
// own topic namespace; these travel over NATS for offline delivery channels.
const (
	TypeSessionCancelled  = "SESSION_CANCELLED"
	TypeSessionStarting   = "SESSION_STARTED"
	TypeParticipantJoined = "PARTICIPANT_JOINED"
	TypeParticipantLeft   = "PARTICIPANT_LEFT"
	TypeMessageSent       = "MESSAGE_SENT"
)

func NewSessionCancelled(sessionID, ownerID, actorID uuid.UUID, title, reason string) Event {
	return BaseEvent{
		Type: TypeSessionCancelled,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"owner_id":   ownerID.String(),
			"actor_id":   actorID.String(),
			"title":      title,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionStarted(sessionID, ownerID uuid.UUID, title string) Event {
	return BaseEvent{
		Type: TypeSessionStarting,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"owner_id":   ownerID.String(),
			"title":      title,
		},
		OccurredAt: time.Now(),
	}
}

func NewParticipantJoined(sessionID, ownerID, userID uuid.UUID, userName string) Event {
	return BaseEvent{
		Type: TypeParticipantJoined,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"owner_id":   ownerID.String(),
			"user_id":    userID.String(),
			"user_name":  userName,
		},
		OccurredAt: time.Now(),
	}
}

func NewParticipantLeft(sessionID, ownerID, userID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeParticipantLeft,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"owner_id":   ownerID.String(),
			"user_id":    userID.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewMessageSent(messageID, groupID, senderID uuid.UUID, recipientIDs []uuid.UUID) Event {
	recipients := make([]string, len(recipientIDs))
	for i, id := range recipientIDs {
		recipients[i] = id.String()
	}
	return BaseEvent{
		Type: TypeMessageSent,
		Data: map[string]interface{}{
			"message_id": messageID.String(),
			"group_id":   groupID.String(),
			"sender_id":  senderID.String(),
			"recipients": recipients,
		},
		OccurredAt: time.Now(),
	}
}
