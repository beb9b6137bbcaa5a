package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/otelhelper"
	"github.com/dukex/workflows-api/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otelhelper.Tracer("github.com/dukex/workflows-api/pkg/services")

// base carries what every service needs: storage, the event publisher and a logger.
type base struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func newBase(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) base {
	if publisher == nil {
		publisher = eventbus.NoopEventBus{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return base{persistence: p, publisher: publisher, logger: logger}
}

// publish sends events once their transaction has committed. Failures are logged only.
func (b base) publish(ctx context.Context, key string, evs ...eventbus.Event) {
	span := trace.SpanFromContext(ctx)

	for _, event := range evs {
		eventType := attribute.String(otelhelper.EventTypeKey, string(event.GetType()))

		err := b.publisher.Publish(ctx, key, event)
		if err != nil {
			span.AddEvent("event_publish_failed", trace.WithAttributes(eventType))
			b.logger.ErrorContext(ctx, "failed to publish event",
				"event_type", string(event.GetType()),
				"key", key,
				"error", err)

			continue
		}

		span.AddEvent("event_published", trace.WithAttributes(eventType))
	}
}

// nolint:spancheck // the caller ends the span through endSpan
func startSpan(ctx context.Context, name string, user *models.User, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if user != nil {
		attrs = append(attrs, attribute.String(otelhelper.UserIDKey, user.ID))
	}

	return otelhelper.StartSpan(ctx, tracer, name, attrs...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		otelhelper.SetError(span, err)
	}

	span.End()
}

func requireUser(user *models.User) error {
	if user == nil || user.ID == "" {
		return ErrAuthenticationRequired
	}

	return nil
}

// permissions loads the caller's grants once per transaction; filters for every intent
// are built from it.
type permissions struct {
	userID string
	index  access.Index
}

func loadPermissions(ctx context.Context, store persistence.Store, userID string) (permissions, error) {
	index, err := store.Permissions().EffectivePermissions(ctx, userID)
	if err != nil {
		return permissions{}, fmt.Errorf("failed to load permissions: %w", err)
	}

	return permissions{userID: userID, index: index}, nil
}

func (p permissions) filter(intent access.Intent) access.Filter {
	return access.NewFilter(p.userID, p.index, intent)
}

// workflowFor returns the workflow when the user may act on it with the given intent.
func workflowFor(ctx context.Context, store persistence.Store, userID, workflowID string, intent access.Intent) (*models.Workflow, error) {
	perms, err := loadPermissions(ctx, store, userID)
	if err != nil {
		return nil, err
	}

	return store.Workflows().Get(ctx, perms.filter(intent), workflowID)
}
