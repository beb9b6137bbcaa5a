package services

import (
	"context"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/events"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/nodes"
	"github.com/dukex/workflows-api/pkg/otelhelper"
	"github.com/dukex/workflows-api/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

// NodeView is a node flattened with the fields of its configuration.
type NodeView map[string]any

// ListNodesOptions controls how much of each node List loads.
type ListNodesOptions struct {
	IncludeConfiguration bool
}

// Node handles node-related business operations.
type Node struct {
	base
}

// NewNode creates a new node service.
func NewNode(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Node {
	return &Node{base: newBase(p, publisher, logger)}
}

// Create adds a node of the given type to a workflow the user may edit. data holds the
// configuration payload and is validated against the node type's schema.
func (n *Node) Create(ctx context.Context, user *models.User, workflowID, nodeType string, data map[string]any) (view NodeView, err error) {
	ctx, span := startSpan(ctx, "node.create", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeTypeKey, nodeType))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	binding, err := nodes.Lookup(models.NodeType(nodeType))
	if err != nil {
		return nil, err
	}

	cfg, err := binding.Decode(withoutIdentity(data))
	if err != nil {
		return nil, err
	}

	var node *models.Node

	err = n.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentEdit); err != nil {
			return err
		}

		node, err = store.Nodes().Create(ctx, workflowID, cfg, user.ID)

		return err
	})
	if err != nil {
		return nil, err
	}

	n.publish(ctx, workflowID, events.NodeCreated{
		BaseEvent: events.NewBaseEvent(events.NodeCreatedEvent, workflowID, user.ID),
		NodeID:    node.ID,
		NodeType:  string(node.Type),
	})

	return NodeView(nodes.Flatten(node)), nil
}

// Get returns a node, with its configuration, of a workflow the user may view.
func (n *Node) Get(ctx context.Context, user *models.User, workflowID, nodeID string) (view NodeView, err error) {
	ctx, span := startSpan(ctx, "node.get", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	var node *models.Node

	err = n.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentView); err != nil {
			return err
		}

		node, err = store.Nodes().Get(ctx, workflowID, nodeID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return NodeView(nodes.Flatten(node)), nil
}

// List returns the nodes of a workflow the user may view. Nodes carry only their identity
// unless the options ask for configurations.
func (n *Node) List(ctx context.Context, user *models.User, workflowID string, opts ListNodesOptions) (views []NodeView, err error) {
	ctx, span := startSpan(ctx, "node.list", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.Bool("workflows.node.include_configuration", opts.IncludeConfiguration))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	var list []*models.Node

	err = n.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentView); err != nil {
			return err
		}

		list, err = store.Nodes().List(ctx, workflowID)
		if err != nil || !opts.IncludeConfiguration {
			return err
		}

		for i, node := range list {
			list[i], err = store.Nodes().Get(ctx, workflowID, node.ID)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	views = make([]NodeView, 0, len(list))
	for _, node := range list {
		views = append(views, NodeView(nodes.Flatten(node)))
	}

	return views, nil
}

// Update patches the configuration of a node of a workflow the user may edit. The node
// type is immutable: a patch naming a different type is rejected.
func (n *Node) Update(ctx context.Context, user *models.User, workflowID, nodeID string, patch map[string]any) (view NodeView, err error) {
	ctx, span := startSpan(ctx, "node.update", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return nil, err
	}

	var node *models.Node

	err = n.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentEdit); err != nil {
			return err
		}

		current, err := store.Nodes().Get(ctx, workflowID, nodeID)
		if err != nil {
			return err
		}

		if requested, ok := patch["node_type"]; ok && requested != string(current.Type) {
			return NewValidationError("Update", "NODE_TYPE_IMMUTABLE", "node_type cannot be changed", ErrNodeTypeImmutable)
		}

		node, err = store.Nodes().Update(ctx, workflowID, nodeID, withoutIdentity(patch))

		return err
	})
	if err != nil {
		return nil, err
	}

	n.publish(ctx, workflowID, events.NodeUpdated{
		BaseEvent: events.NewBaseEvent(events.NodeUpdatedEvent, workflowID, user.ID),
		NodeID:    node.ID,
		NodeType:  string(node.Type),
	})

	return NodeView(nodes.Flatten(node)), nil
}

// Delete removes a node, its configuration and the edges touching it.
func (n *Node) Delete(ctx context.Context, user *models.User, workflowID, nodeID string) (err error) {
	ctx, span := startSpan(ctx, "node.delete", user,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID))
	defer func() { endSpan(span, err) }()

	if err := requireUser(user); err != nil {
		return err
	}

	err = n.persistence.Transaction(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := workflowFor(ctx, store, user.ID, workflowID, access.IntentEdit); err != nil {
			return err
		}

		return store.Nodes().Delete(ctx, workflowID, nodeID)
	})
	if err != nil {
		return err
	}

	n.publish(ctx, workflowID, events.NodeDeleted{
		BaseEvent: events.NewBaseEvent(events.NodeDeletedEvent, workflowID, user.ID),
		NodeID:    nodeID,
	})

	return nil
}

func withoutIdentity(data map[string]any) map[string]any {
	filtered := make(map[string]any, len(data))

	for key, value := range data {
		if !nodes.IsIdentityKey(key) {
			filtered[key] = value
		}
	}

	return filtered
}
