package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/workflows-api/pkg/channels/gochannel"
	"github.com/dukex/workflows-api/pkg/channels/kafka"
	"github.com/dukex/workflows-api/pkg/eventbus"
)

// NewEventBus creates the event bus for the given provider: "gochannel", "kafka" or "none".
func NewEventBus(provider string, brokers []string, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, "workflows-api", brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "none":
		return eventbus.NoopEventBus{}, nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
