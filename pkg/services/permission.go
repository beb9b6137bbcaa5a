package services

import (
	"context"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/events"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/otelhelper"
	"github.com/dukex/workflows-api/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

// Permission manages the grants of a workflow. Only the workflow creator may do so.
type Permission struct {
	base
}

// NewPermission creates a new permission service.
func NewPermission(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Permission {
	return &Permission{base: newBase(p, publisher, logger)}
}

// ownedWorkflow returns the workflow when the user created it. A workflow the user cannot
// see is not found; one the user can see but does not own is forbidden.
func ownedWorkflow(ctx context.Context, store persistence.Store, userID, workflowID string) (*models.Workflow, error) {
	workflow, err := workflowFor(ctx, store, userID, workflowID, access.IntentView)
	if err != nil {
		return nil, err
	}

	if workflow.CreatedBy != userID {
		return nil, ErrForbidden
	}

	return workflow, nil
}

// List returns the grants of a workflow owned by the user.
func (p *Permission) List(ctx context.Context, user *models.User, workflowID string) (grants []*models.Permission, err error) {
	ctx, span := startSpan(ctx, "permission.list", user, attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	err = p.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := ownedWorkflow(ctx, store, user.ID, workflowID); err != nil {
			return err
		}

		grants, err = store.Permissions().ListByWorkflow(ctx, workflowID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return grants, nil
}

// Grant gives another user a right on a workflow owned by the caller.
func (p *Permission) Grant(ctx context.Context, user *models.User, workflowID, userID string, permissionType models.PermissionType) (grant *models.Permission, err error) {
	ctx, span := startSpan(ctx, "permission.grant", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.PermissionTypeKey, string(permissionType)))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	if !permissionType.Valid() {
		return nil, NewValidationError("Grant", "INVALID_PERMISSION_TYPE", "permission_type must be one of view, edit, delete", ErrInvalidRequest)
	}

	grant = &models.Permission{
		UserID:     userID,
		WorkflowID: workflowID,
		Type:       permissionType,
		CreatedBy:  user.ID,
	}

	err = p.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := ownedWorkflow(ctx, store, user.ID, workflowID); err != nil {
			return err
		}

		return store.Permissions().Grant(ctx, grant)
	})
	if err != nil {
		return nil, err
	}

	p.publish(ctx, workflowID, events.PermissionGranted{
		BaseEvent:      events.NewBaseEvent(events.PermissionGrantedEvent, workflowID, user.ID),
		UserID:         userID,
		PermissionType: string(permissionType),
	})

	return grant, nil
}

// Revoke removes a grant from a workflow owned by the caller.
func (p *Permission) Revoke(ctx context.Context, user *models.User, workflowID, userID string, permissionType models.PermissionType) (err error) {
	ctx, span := startSpan(ctx, "permission.revoke", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.PermissionTypeKey, string(permissionType)))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return err
	}

	if !permissionType.Valid() {
		return NewValidationError("Revoke", "INVALID_PERMISSION_TYPE", "permission_type must be one of view, edit, delete", ErrInvalidRequest)
	}

	err = p.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := ownedWorkflow(ctx, store, user.ID, workflowID); err != nil {
			return err
		}

		return store.Permissions().Revoke(ctx, workflowID, userID, permissionType)
	})
	if err != nil {
		return err
	}

	p.publish(ctx, workflowID, events.PermissionRevoked{
		BaseEvent:      events.NewBaseEvent(events.PermissionRevokedEvent, workflowID, user.ID),
		UserID:         userID,
		PermissionType: string(permissionType),
	})

	return nil
}
