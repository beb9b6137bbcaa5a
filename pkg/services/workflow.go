package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/events"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/otelhelper"
	"github.com/dukex/workflows-api/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

// Workflow handles workflow-related business operations.
type Workflow struct {
	base
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Workflow {
	return &Workflow{base: newBase(p, publisher, logger)}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every workflow the user may view, in creation order.
func (w *Workflow) List(ctx context.Context, user *models.User) (workflows []*models.Workflow, err error) {
	ctx, span := startSpan(ctx, "workflow.list", user)
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	err = w.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		perms, err := loadPermissions(ctx, store, user.ID)
		if err != nil {
			return err
		}

		workflows, err = store.Workflows().List(ctx, perms.filter(access.IntentView))

		return err
	})
	if err != nil {
		return nil, err
	}

	return workflows, nil
}

// FetchByID retrieves a workflow the user may view.
func (w *Workflow) FetchByID(ctx context.Context, user *models.User, id string) (workflow *models.Workflow, err error) {
	ctx, span := startSpan(ctx, "workflow.get", user, attribute.String(otelhelper.WorkflowIDKey, id))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	err = w.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		workflow, err = workflowFor(ctx, store, user.ID, id, access.IntentView)

		return err
	})
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// Create adds a new workflow owned by the user.
func (w *Workflow) Create(ctx context.Context, user *models.User, name string, description *string) (workflow *models.Workflow, err error) {
	ctx, span := startSpan(ctx, "workflow.create", user)
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("Create", "NAME_REQUIRED", "workflow name is required", ErrInvalidRequest)
	}

	workflow = &models.Workflow{
		Name:        name,
		Description: description,
		CreatedBy:   user.ID,
	}

	err = w.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		return store.Workflows().Create(ctx, workflow)
	})
	if err != nil {
		return nil, err
	}

	w.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, workflow.ID, user.ID),
		Name:      workflow.Name,
	})

	return workflow, nil
}

// Update applies a partial update to a workflow the user may edit. Nil patch fields are
// left untouched.
func (w *Workflow) Update(ctx context.Context, user *models.User, id string, patch models.WorkflowPatch) (workflow *models.Workflow, err error) {
	ctx, span := startSpan(ctx, "workflow.update", user, attribute.String(otelhelper.WorkflowIDKey, id))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, NewValidationError("Update", "NAME_REQUIRED", "workflow name cannot be empty", ErrInvalidRequest)
		}

		patch.Name = &name
	}

	err = w.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		perms, err := loadPermissions(ctx, store, user.ID)
		if err != nil {
			return err
		}

		workflow, err = store.Workflows().Update(ctx, perms.filter(access.IntentEdit), id, patch)

		return err
	})
	if err != nil {
		return nil, err
	}

	w.publish(ctx, workflow.ID, events.WorkflowUpdated{
		BaseEvent: events.NewBaseEvent(events.WorkflowUpdatedEvent, workflow.ID, user.ID),
		Name:      workflow.Name,
	})

	return workflow, nil
}

// Delete removes a workflow the user may delete, together with its nodes, edges and grants.
func (w *Workflow) Delete(ctx context.Context, user *models.User, id string) (err error) {
	ctx, span := startSpan(ctx, "workflow.delete", user, attribute.String(otelhelper.WorkflowIDKey, id))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return err
	}

	err = w.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		perms, err := loadPermissions(ctx, store, user.ID)
		if err != nil {
			return err
		}

		return store.Workflows().Delete(ctx, perms.filter(access.IntentDelete), id)
	})
	if err != nil {
		return err
	}

	w.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id, user.ID),
	})

	return nil
}
