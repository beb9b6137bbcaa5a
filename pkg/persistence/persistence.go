// Package persistence provides the data storage abstraction for users, workflows, their
// permission grants, nodes and edges.
package persistence

import (
	"context"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/models"
)

// Persistence is a storage backend. Every logical request runs inside one Transaction:
// it commits when fn returns nil and rolls back otherwise.
type Persistence interface {
	Transaction(ctx context.Context, fn func(ctx context.Context, store Store) error) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// Store exposes the repositories bound to one transaction.
type Store interface {
	Users() UserRepository
	Permissions() PermissionRepository
	Workflows() WorkflowRepository
	Nodes() NodeRepository
	Edges() EdgeRepository
}

// UserRepository stores user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// PermissionRepository stores per-workflow permission grants.
type PermissionRepository interface {
	// EffectivePermissions returns the index of every grant held by the user. A user without
	// grants gets an empty index, never an error.
	EffectivePermissions(ctx context.Context, userID string) (access.Index, error)
	Grant(ctx context.Context, permission *models.Permission) error
	Revoke(ctx context.Context, workflowID, userID string, permissionType models.PermissionType) error
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Permission, error)
}

// WorkflowRepository stores workflows. Every lookup is constrained by an access filter, so
// a workflow that exists but is not visible is reported as not found.
type WorkflowRepository interface {
	Get(ctx context.Context, filter access.Filter, id string) (*models.Workflow, error)
	List(ctx context.Context, filter access.Filter) ([]*models.Workflow, error)
	Create(ctx context.Context, workflow *models.Workflow) error
	Update(ctx context.Context, filter access.Filter, id string, patch models.WorkflowPatch) (*models.Workflow, error)
	Delete(ctx context.Context, filter access.Filter, id string) error
}

// NodeRepository stores nodes together with their configuration.
type NodeRepository interface {
	Create(ctx context.Context, workflowID string, cfg models.Configuration, userID string) (*models.Node, error)
	Get(ctx context.Context, workflowID, nodeID string) (*models.Node, error)
	// List returns the workflow's nodes without their configuration.
	List(ctx context.Context, workflowID string) ([]*models.Node, error)
	Update(ctx context.Context, workflowID, nodeID string, patch map[string]any) (*models.Node, error)
	Delete(ctx context.Context, workflowID, nodeID string) error
}

// EdgeRepository stores the edges between nodes of a workflow.
type EdgeRepository interface {
	Create(ctx context.Context, edge *models.Edge) error
	Get(ctx context.Context, workflowID, edgeID string) (*models.Edge, error)
	List(ctx context.Context, workflowID string) ([]*models.Edge, error)
	Update(ctx context.Context, workflowID, edgeID string, status models.EdgeWeight) (*models.Edge, error)
	Delete(ctx context.Context, workflowID, edgeID string) error
}
