package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/events"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/otelhelper"
	"github.com/dukex/workflows-api/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

// CreateEdgeRequest describes a new edge between two nodes of one workflow.
type CreateEdgeRequest struct {
	SourceNodeID string
	TargetNodeID string
	Status       models.EdgeWeight
}

// Edge handles edge-related business operations.
type Edge struct {
	base
}

// NewEdge creates a new edge service.
func NewEdge(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Edge {
	return &Edge{base: newBase(p, publisher, logger)}
}

// Create connects two nodes of a workflow the user may edit.
func (e *Edge) Create(ctx context.Context, user *models.User, workflowID string, req CreateEdgeRequest) (edge *models.Edge, err error) {
	ctx, span := startSpan(ctx, "edge.create", user, attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	if !req.Status.Valid() {
		return nil, NewValidationError("Create", "INVALID_STATUS", fmt.Sprintf("invalid edge status %d, allowed: -1, 0, 1", req.Status), ErrInvalidRequest)
	}

	edge = &models.Edge{
		WorkflowID:   workflowID,
		SourceNodeID: req.SourceNodeID,
		TargetNodeID: req.TargetNodeID,
		Status:       req.Status,
		CreatedBy:    user.ID,
	}

	err = e.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentEdit); err != nil {
			return err
		}

		for _, nodeID := range []string{req.SourceNodeID, req.TargetNodeID} {
			_, err := store.Nodes().Get(ctx, workflowID, nodeID)
			if persistence.IsNodeNotFound(err) {
				return NewValidationError("Create", "INVALID_EDGE",
					fmt.Sprintf("node %s does not belong to workflow %s", nodeID, workflowID), ErrInvalidEdge)
			}

			if err != nil {
				return err
			}
		}

		return store.Edges().Create(ctx, edge)
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, workflowID, events.EdgeCreated{
		BaseEvent:    events.NewBaseEvent(events.EdgeCreatedEvent, workflowID, user.ID),
		EdgeID:       edge.ID,
		SourceNodeID: edge.SourceNodeID,
		TargetNodeID: edge.TargetNodeID,
		Status:       int(edge.Status),
	})

	return edge, nil
}

// Get returns an edge of a workflow the user may view.
func (e *Edge) Get(ctx context.Context, user *models.User, workflowID, edgeID string) (edge *models.Edge, err error) {
	ctx, span := startSpan(ctx, "edge.get", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.EdgeIDKey, edgeID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	err = e.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentView); err != nil {
			return err
		}

		edge, err = store.Edges().Get(ctx, workflowID, edgeID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return edge, nil
}

// List returns the edges of a workflow the user may view.
func (e *Edge) List(ctx context.Context, user *models.User, workflowID string) (edges []*models.Edge, err error) {
	ctx, span := startSpan(ctx, "edge.list", user, attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	err = e.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentView); err != nil {
			return err
		}

		edges, err = store.Edges().List(ctx, workflowID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return edges, nil
}

// Update relabels an edge of a workflow the user may edit.
func (e *Edge) Update(ctx context.Context, user *models.User, workflowID, edgeID string, status models.EdgeWeight) (edge *models.Edge, err error) {
	ctx, span := startSpan(ctx, "edge.update", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.EdgeIDKey, edgeID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, NewValidationError("Update", "INVALID_STATUS", fmt.Sprintf("invalid edge status %d, allowed: -1, 0, 1", status), ErrInvalidRequest)
	}

	err = e.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentEdit); err != nil {
			return err
		}

		edge, err = store.Edges().Update(ctx, workflowID, edgeID, status)

		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, workflowID, events.EdgeUpdated{
		BaseEvent: events.NewBaseEvent(events.EdgeUpdatedEvent, workflowID, user.ID),
		EdgeID:    edge.ID,
		Status:    int(edge.Status),
	})

	return edge, nil
}

// Delete removes an edge of a workflow the user may edit.
func (e *Edge) Delete(ctx context.Context, user *models.User, workflowID, edgeID string) (err error) {
	ctx, span := startSpan(ctx, "edge.delete", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.EdgeIDKey, edgeID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return err
	}

	err = e.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentEdit); err != nil {
			return err
		}

		return store.Edges().Delete(ctx, workflowID, edgeID)
	})
	if err != nil {
		return err
	}

	e.publish(ctx, workflowID, events.EdgeDeleted{
		BaseEvent: events.NewBaseEvent(events.EdgeDeletedEvent, workflowID, user.ID),
		EdgeID:    edgeID,
	})

	return nil
}
