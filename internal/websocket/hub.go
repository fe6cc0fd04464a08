package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"studysync-be/internal/pkg/logger"
	"studysync-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TopicAuthorizer guards subscriptions and client relays. Group topics need
// membership, session topics need enrollment or ownership.
type TopicAuthorizer interface {
	CanAccess(ctx context.Context, userID uuid.UUID, topic string) (bool, error)
}

// subscription couples a client with one topic for the run loop.
type subscription struct {
	client *Client
	topic  string
}

// outbound is one payload headed for every subscriber of a topic.
type outbound struct {
	topic string
	data  []byte
}

// Envelope is the frame delivered to subscribers: the topic plus the event
// payload, so one connection can multiplex many topics.
type Envelope struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// Hub maintains per-topic subscriber sets and fans live events out to them.
// Every mutation and every publish goes through the single run loop, which is
// what makes delivery order per topic equal publish order.
type Hub struct {
	// topic -> subscriber set
	topics map[string]map[*Client]bool

	// topics a client holds, for disconnect cleanup
	clientTopics map[*Client]map[string]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	outbox      chan outbound

	// guards the reverse lookup used outside the run loop
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb        *redis.Client
	instanceID string

	authorizer TopicAuthorizer
	presence   *memory.PresenceRepository
	logger     logger.ILogger
}

const redisChannel = "realtime_events"

// outboxSize bounds how far publishers can run ahead of the run loop before
// events are dropped. Publishing never blocks the caller.
const outboxSize = 1024

func NewHub(rdb *redis.Client, authorizer TopicAuthorizer, presence *memory.PresenceRepository, log logger.ILogger) *Hub {
	return &Hub{
		topics:       make(map[string]map[*Client]bool),
		clientTopics: make(map[*Client]map[string]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		subscribe:    make(chan subscription),
		unsubscribe:  make(chan subscription),
		outbox:       make(chan outbound, outboxSize),
		rdb:          rdb,
		instanceID:   uuid.NewString(),
		authorizer:   authorizer,
		presence:     presence,
		logger:       log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clientTopics[client] = make(map[string]bool)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.dropClient(client)

		case sub := <-h.subscribe:
			h.addSubscription(sub.client, sub.topic)

		case sub := <-h.unsubscribe:
			h.removeSubscription(sub.client, sub.topic)

		case out := <-h.outbox:
			h.deliverLocal(out.topic, out.data)
		}
	}
}

// Publish delivers payload to every client currently subscribed to topic.
// Best-effort: no persistence, no replay, no retries, never blocks the caller.
func (h *Hub) Publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal broadcast payload", map[string]interface{}{"topic": topic, "error": err.Error()})
		return
	}

	frame, err := json.Marshal(Envelope{Topic: topic, Data: data})
	if err != nil {
		return
	}

	select {
	case h.outbox <- outbound{topic: topic, data: frame}:
	default:
		h.logger.Warn("Hub", "Outbox full, dropping event", map[string]interface{}{"topic": topic})
	}

	// Forward to the other instances. Origin is tagged so we skip our own echo.
	if h.rdb != nil {
		bridge, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instanceID,
			"topic":   topic,
			"message": json.RawMessage(frame),
		})
		h.rdb.Publish(context.Background(), redisChannel, bridge)
	}
}

// Subscribe attaches the client to a topic after the authorizer clears it.
func (h *Hub) Subscribe(ctx context.Context, client *Client, topic string) error {
	if h.authorizer != nil {
		ok, err := h.authorizer.CanAccess(ctx, client.UserID, topic)
		if err != nil {
			return err
		}
		if !ok {
			h.logger.Warn("Hub", "Subscription refused", map[string]interface{}{"user_id": client.UserID, "topic": topic})
			return nil
		}
	}
	h.subscribe <- subscription{client: client, topic: topic}
	return nil
}

func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.unsubscribe <- subscription{client: client, topic: topic}
}

// Relay publishes a client-originated ephemeral event (session chat and
// whiteboard strokes). The payload is forwarded as-is, never persisted.
func (h *Hub) Relay(ctx context.Context, client *Client, topic string, data json.RawMessage) error {
	kind := topicKind(topic)
	if kind != "whiteboard" && kind != "chat" {
		return nil
	}
	if h.authorizer != nil {
		ok, err := h.authorizer.CanAccess(ctx, client.UserID, topic)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	h.Publish(topic, data)
	return nil
}

func (h *Hub) addSubscription(client *Client, topic string) {
	h.mu.Lock()
	held, known := h.clientTopics[client]
	if known {
		held[topic] = true
	}
	h.mu.Unlock()

	// Only register creates the reverse entry. A client that was dropped or
	// never registered has none; admitting it would write to a closed Send.
	if !known {
		h.logger.Warn("Hub", "Subscription from dropped client refused", map[string]interface{}{"user_id": client.UserID, "topic": topic})
		return
	}

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][client] = true

	if h.presence != nil {
		if sessionID, kind, ok := ParseSessionTopic(topic); ok && kind == "participants" {
			h.presence.Mark(sessionID, client.UserID)
		}
	}
}

func (h *Hub) removeSubscription(client *Client, topic string) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}

	h.mu.Lock()
	if topics, ok := h.clientTopics[client]; ok {
		delete(topics, topic)
	}
	h.mu.Unlock()

	if h.presence != nil {
		if sessionID, kind, ok := ParseSessionTopic(topic); ok && kind == "participants" {
			h.presence.Clear(sessionID, client.UserID)
		}
	}
}

// refreshPresence extends the presence TTL for every participants topic the
// client still holds. Driven by the connection's pong replies, so an entry
// only expires once the client stops answering pings.
func (h *Hub) refreshPresence(client *Client) {
	if h.presence == nil {
		return
	}
	h.mu.RLock()
	topics := make([]string, 0, len(h.clientTopics[client]))
	for topic := range h.clientTopics[client] {
		topics = append(topics, topic)
	}
	h.mu.RUnlock()

	for _, topic := range topics {
		if sessionID, kind, ok := ParseSessionTopic(topic); ok && kind == "participants" {
			h.presence.Refresh(sessionID, client.UserID)
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	h.mu.Lock()
	topics := h.clientTopics[client]
	delete(h.clientTopics, client)
	h.mu.Unlock()

	if topics == nil {
		return
	}
	for topic := range topics {
		if subs, ok := h.topics[topic]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
		if h.presence != nil {
			if sessionID, kind, ok := ParseSessionTopic(topic); ok && kind == "participants" {
				h.presence.Clear(sessionID, client.UserID)
			}
		}
	}
	close(client.Send)
	// Tear the connection down too, so the read pump dies with the client
	// instead of lingering and trying to resubscribe.
	if client.Conn != nil {
		client.Conn.Close()
	}
	h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
}

func (h *Hub) deliverLocal(topic string, data []byte) {
	for client := range h.topics[topic] {
		select {
		case client.Send <- data:
		default:
			// Slow consumer: drop the connection, the client re-syncs over REST.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
			h.dropClient(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin  string          `json:"origin"`
			Topic   string          `json:"topic"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis bridge parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}
		select {
		case h.outbox <- outbound{topic: payload.Topic, data: payload.Message}:
		default:
			h.logger.Warn("Hub", "Outbox full, dropping bridged event", map[string]interface{}{"topic": payload.Topic})
		}
	}
}

// GroupTopic and session topic helpers keep the scoped-string format in one place.

func GroupTopic(groupID uuid.UUID) string {
	return "group/" + groupID.String()
}

func SessionTopic(sessionID uuid.UUID, kind string) string {
	return "session/" + sessionID.String() + "/" + kind
}

// ParseSessionTopic splits "session/{id}/{kind}"; ok is false for any other shape.
func ParseSessionTopic(topic string) (uuid.UUID, string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "session" {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, parts[2], true
}

func topicKind(topic string) string {
	_, kind, ok := ParseSessionTopic(topic)
	if !ok {
		return ""
	}
	return kind
}
