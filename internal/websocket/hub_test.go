package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"studysync-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// allowAll admits every subscription.
type allowAll struct{}

func (allowAll) CanAccess(context.Context, uuid.UUID, string) (bool, error) { return true, nil }

// denyAll refuses every subscription.
type denyAll struct{}

func (denyAll) CanAccess(context.Context, uuid.UUID, string) (bool, error) { return false, nil }

func newTestHub(authorizer TopicAuthorizer, presence *memory.PresenceRepository) *Hub {
	h := NewHub(nil, authorizer, presence, nopLogger{})
	go h.Run()
	return h
}

func newTestClient(h *Hub, buffer int) *Client {
	c := &Client{Hub: h, UserID: uuid.New(), Send: make(chan []byte, buffer)}
	h.register <- c
	return c
}

func attach(t *testing.T, h *Hub, c *Client, topic string) {
	t.Helper()
	require.NoError(t, h.Subscribe(context.Background(), c, topic))
	// The run loop applies subscriptions asynchronously.
	time.Sleep(20 * time.Millisecond)
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return Envelope{}
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected delivery: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	subscriber := newTestClient(h, 16)
	outsider := newTestClient(h, 16)
	topic := GroupTopic(uuid.New())

	attach(t, h, subscriber, topic)

	h.Publish(topic, map[string]string{"content": "hello"})

	env := receive(t, subscriber)
	assert.Equal(t, topic, env.Topic)
	assert.JSONEq(t, `{"content":"hello"}`, string(env.Data))

	expectNothing(t, outsider)
}

func TestPerTopicDeliveryOrder(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	subscriber := newTestClient(h, 256)
	topic := GroupTopic(uuid.New())
	attach(t, h, subscriber, topic)

	const n = 100
	for i := 0; i < n; i++ {
		h.Publish(topic, map[string]int{"seq": i})
	}

	for i := 0; i < n; i++ {
		env := receive(t, subscriber)
		var payload struct {
			Seq int `json:"seq"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, i, payload.Seq)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	client := newTestClient(h, 16)
	sessionID := uuid.New()
	attach(t, h, client, SessionTopic(sessionID, "chat"))

	h.Publish(SessionTopic(sessionID, "whiteboard"), map[string]string{"action": "stroke"})
	expectNothing(t, client)

	h.Publish(SessionTopic(sessionID, "chat"), map[string]string{"content": "hi"})
	env := receive(t, client)
	assert.Equal(t, SessionTopic(sessionID, "chat"), env.Topic)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	client := newTestClient(h, 16)
	topic := GroupTopic(uuid.New())
	attach(t, h, client, topic)

	h.Unsubscribe(client, topic)
	time.Sleep(20 * time.Millisecond)

	h.Publish(topic, map[string]string{"content": "gone"})
	expectNothing(t, client)
}

func TestRefusedSubscriptionGetsNothing(t *testing.T) {
	h := newTestHub(denyAll{}, nil)
	client := newTestClient(h, 16)
	topic := GroupTopic(uuid.New())

	require.NoError(t, h.Subscribe(context.Background(), client, topic))
	time.Sleep(20 * time.Millisecond)

	h.Publish(topic, map[string]string{"content": "secret"})
	expectNothing(t, client)
}

func TestSlowConsumerIsDropped(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	slow := newTestClient(h, 1)
	topic := GroupTopic(uuid.New())
	attach(t, h, slow, topic)

	// First fills the buffer, second overflows it and drops the client.
	h.Publish(topic, map[string]string{"n": "1"})
	h.Publish(topic, map[string]string{"n": "2"})
	time.Sleep(50 * time.Millisecond)

	// Drain the buffered frame; the closed channel follows.
	<-slow.Send
	_, open := <-slow.Send
	assert.False(t, open, "slow client channel should be closed")
}

func TestDroppedClientCannotResubscribe(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	dropped := newTestClient(h, 0)
	healthy := newTestClient(h, 16)
	topic := GroupTopic(uuid.New())

	attach(t, h, dropped, topic)
	attach(t, h, healthy, topic)

	// No buffer, so the first delivery overflows and drops the client.
	h.Publish(topic, map[string]string{"n": "1"})
	time.Sleep(50 * time.Millisecond)
	_, open := <-dropped.Send
	require.False(t, open, "dropped client channel should be closed")

	// A resubscribe must be refused rather than resurrect the closed channel.
	require.NoError(t, h.Subscribe(context.Background(), dropped, topic))
	time.Sleep(20 * time.Millisecond)

	// The run loop must survive the next delivery on that topic.
	h.Publish(topic, map[string]string{"n": "2"})
	first := receive(t, healthy)
	assert.Equal(t, topic, first.Topic)
	second := receive(t, healthy)
	assert.JSONEq(t, `{"n":"2"}`, string(second.Data))
}

func TestDisconnectCleansSubscriptions(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	client := newTestClient(h, 16)
	topic := GroupTopic(uuid.New())
	attach(t, h, client, topic)

	h.unregister <- client
	time.Sleep(20 * time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)

	// Publishing afterwards must not panic or deliver.
	h.Publish(topic, map[string]string{"content": "after"})
	time.Sleep(20 * time.Millisecond)
}

func TestParticipantsTopicTracksPresence(t *testing.T) {
	presence := memory.NewPresenceRepository(time.Minute)
	h := newTestHub(allowAll{}, presence)
	client := newTestClient(h, 16)
	sessionID := uuid.New()
	topic := SessionTopic(sessionID, "participants")

	attach(t, h, client, topic)
	live := presence.List(sessionID)
	require.Len(t, live, 1)
	assert.Equal(t, client.UserID, live[0].UserId)

	h.Unsubscribe(client, topic)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, presence.List(sessionID))
}

func TestPongRefreshKeepsPresenceAlive(t *testing.T) {
	presence := memory.NewPresenceRepository(150 * time.Millisecond)
	h := newTestHub(allowAll{}, presence)
	client := newTestClient(h, 16)
	sessionID := uuid.New()
	attach(t, h, client, SessionTopic(sessionID, "participants"))

	// Keep refreshing past the TTL, the way pong replies do.
	for i := 0; i < 3; i++ {
		time.Sleep(100 * time.Millisecond)
		h.refreshPresence(client)
	}
	require.Len(t, presence.List(sessionID), 1)

	// Without refreshes the entry expires on its own.
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, presence.List(sessionID))
}

func TestRelayLimitedToEphemeralKinds(t *testing.T) {
	h := newTestHub(allowAll{}, nil)
	sender := newTestClient(h, 16)
	receiver := newTestClient(h, 16)
	sessionID := uuid.New()

	attach(t, h, receiver, SessionTopic(sessionID, "whiteboard"))
	attach(t, h, receiver, SessionTopic(sessionID, "status"))

	stroke, _ := json.Marshal(map[string]string{"action": "draw"})
	require.NoError(t, h.Relay(context.Background(), sender, SessionTopic(sessionID, "whiteboard"), stroke))
	env := receive(t, receiver)
	assert.Equal(t, SessionTopic(sessionID, "whiteboard"), env.Topic)

	// Status is server-owned; client relays there are ignored.
	fake, _ := json.Marshal(map[string]string{"status": "COMPLETED"})
	require.NoError(t, h.Relay(context.Background(), sender, SessionTopic(sessionID, "status"), fake))
	expectNothing(t, receiver)
}

func TestParseSessionTopic(t *testing.T) {
	id := uuid.New()

	parsed, kind, ok := ParseSessionTopic("session/" + id.String() + "/chat")
	require.True(t, ok)
	assert.Equal(t, id, parsed)
	assert.Equal(t, "chat", kind)

	_, _, ok = ParseSessionTopic("group/" + id.String())
	assert.False(t, ok)
	_, _, ok = ParseSessionTopic("session/not-a-uuid/chat")
	assert.False(t, ok)
	_, _, ok = ParseSessionTopic("session/" + id.String())
	assert.False(t, ok)
}
