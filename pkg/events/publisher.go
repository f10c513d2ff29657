package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher is the minimal publishing contract the engine depends on.
// Publishing is auxiliary: callers log publish failures, they never fail
// the request over them.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// envelope is the wire form of an event.
type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt string                 `json:"occurred_at"`
}

// WatermillPublisher publishes events on a watermill topic. The in-process
// gochannel pub/sub satisfies message.Publisher.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewWatermillPublisher(publisher message.Publisher, topic string) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
	}
}

func (p *WatermillPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(envelope{
		Type:       evt.EventType(),
		Data:       evt.Payload(),
		OccurredAt: evt.Timestamp().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.publisher.Publish(p.topic, msg)
}

// Decode parses an event envelope back from a message payload.
func Decode(payload []byte) (*BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &BaseEvent{Type: env.Type, Data: env.Data}, nil
}
