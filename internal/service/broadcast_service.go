package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IBroadcastPublisher is the post-commit fan-out port. Services publish here
// only after their transaction commits; the consumer forwards to the hub.
type IBroadcastPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// broadcastFrame is the bus wire format: the hub topic plus the event body.
type broadcastFrame struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

type broadcastPublisher struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewBroadcastPublisher(topicName string, pubSub *gochannel.GoChannel) IBroadcastPublisher {
	return &broadcastPublisher{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *broadcastPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	frame, err := json.Marshal(broadcastFrame{Topic: topic, Data: data})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), frame)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, msg)
}
