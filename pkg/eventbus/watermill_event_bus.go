package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/workflows-api/pkg/events"
)

type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	mu            sync.RWMutex
	subscriptions map[events.EventType]EventHandler
}

// NewWatermillEventBus wraps a Watermill publisher and subscriber. The subscriber may be nil
// for publish-only buses.
func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	if eb.subscriber == nil {
		return errors.New("event bus has no subscriber")
	}

	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			eb.mu.RLock()
			handler, exists := eb.subscriptions[eventType]
			eb.mu.RUnlock()

			if !exists {
				msg.Ack()

				continue
			}

			event, ok := newEvent(eventType)
			if !ok {
				msg.Nack()

				continue
			}

			err := json.Unmarshal(msg.Payload, event)
			if err != nil {
				msg.Nack()

				continue
			}

			err = handler(ctx, event)
			if err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func newEvent(eventType events.EventType) (any, bool) {
	switch eventType {
	case events.WorkflowCreatedEvent:
		return &events.WorkflowCreated{}, true
	case events.WorkflowUpdatedEvent:
		return &events.WorkflowUpdated{}, true
	case events.WorkflowDeletedEvent:
		return &events.WorkflowDeleted{}, true
	case events.NodeCreatedEvent:
		return &events.NodeCreated{}, true
	case events.NodeUpdatedEvent:
		return &events.NodeUpdated{}, true
	case events.NodeDeletedEvent:
		return &events.NodeDeleted{}, true
	case events.EdgeCreatedEvent:
		return &events.EdgeCreated{}, true
	case events.EdgeUpdatedEvent:
		return &events.EdgeUpdated{}, true
	case events.EdgeDeletedEvent:
		return &events.EdgeDeleted{}, true
	case events.PermissionGrantedEvent:
		return &events.PermissionGranted{}, true
	case events.PermissionRevokedEvent:
		return &events.PermissionRevoked{}, true
	default:
		return nil, false
	}
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscriptions[eventType] = handler

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	if eb.subscriber == nil {
		return nil
	}

	return eb.subscriber.Close()
}
