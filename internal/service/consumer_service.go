package service

import (
	"context"
	"log"

	"f1-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	evt, err := events.Decode(msg.Payload)
	if err != nil {
		log.Printf("[ERROR] Failed to decode event message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	switch evt.EventType() {
	case events.TypeQueryFailed:
		log.Printf("[ERROR] Query failed: %v", evt.Data)
	case events.TypeQueryDegraded:
		log.Printf("[WARN] Query degraded: %v", evt.Data)
	default:
		log.Printf("[INFO] Event %s: %v", evt.EventType(), evt.Data)
	}

	msg.Ack()
}
