package eventbus

import (
	"context"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/events"
)

// LogEvents registers a handler on every domain event type that writes the event to the
// logger. It gives deployments without a downstream consumer an audit trail.
func LogEvents(subscriber EventSubscriber, logger *slog.Logger) error {
	for _, eventType := range events.EventTypes {
		err := subscriber.Handle(eventType, func(ctx context.Context, event any) error {
			logger.InfoContext(ctx, "domain event", "event_type", string(eventType), "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
