package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/nodes"
	"github.com/dukex/workflows-api/pkg/persistence"
)

// NodeRepository handles node and node configuration database operations.
type NodeRepository struct {
	db     querier
	logger *slog.Logger
}

// NewNodeRepository creates a new node repository.
func NewNodeRepository(db querier, logger *slog.Logger) *NodeRepository {
	return &NodeRepository{db: db, logger: logger}
}

// Create inserts the node row and its configuration row.
func (r *NodeRepository) Create(ctx context.Context, workflowID string, cfg models.Configuration, userID string) (*models.Node, error) {
	binding, err := nodes.For(cfg)
	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, "", err)
	}

	if !validID(workflowID) {
		return nil, persistence.NewWorkflowError("CreateNode", workflowID, persistence.ErrWorkflowNotFound)
	}

	nodeID, err := newID()
	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, "", err)
	}

	configurationID, err := newID()
	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, nodeID, err)
	}

	now := currentTime()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO nodes (id, workflow_id, node_type, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		nodeID, workflowID, binding.Type, userID, now, now,
	)
	if isForeignKeyViolation(err) {
		return nil, persistence.NewWorkflowError("CreateNode", workflowID, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, nodeID, fmt.Errorf("failed to insert node: %w", err))
	}

	record := binding.Record(cfg)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO node_configurations (id, node_id, node_type, text, status, condition, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		configurationID, nodeID, record.NodeType, record.Text, record.Status, record.Condition, userID, now, now,
	)
	if isUniqueViolation(err) {
		return nil, persistence.NewNodeError("Create", workflowID, nodeID, persistence.ErrConfigurationExists)
	}

	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, nodeID, fmt.Errorf("failed to insert node configuration: %w", err))
	}

	return &models.Node{
		ID:         nodeID,
		WorkflowID: workflowID,
		Type:       binding.Type,
		Config:     cfg,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Get returns the node with its configuration when it belongs to the workflow.
func (r *NodeRepository) Get(ctx context.Context, workflowID, nodeID string) (*models.Node, error) {
	if !validID(workflowID) || !validID(nodeID) {
		return nil, persistence.NewNodeError("Get", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	query := `
		SELECT
			n.id
		  , n.workflow_id
		  , n.node_type
		  , n.created_by
		  , n.created_at
		  , n.updated_at
		  , c.id
		  , c.text
		  , c.status
		  , c.condition
		FROM nodes n
		JOIN node_configurations c ON c.node_id = n.id
		WHERE n.id = $1 AND n.workflow_id = $2
	`

	var (
		node      models.Node
		record    models.ConfigurationRecord
		text      sql.NullString
		status    sql.NullString
		condition sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, nodeID, workflowID).Scan(
		&node.ID,
		&node.WorkflowID,
		&node.Type,
		&node.CreatedBy,
		&node.CreatedAt,
		&node.UpdatedAt,
		&record.ID,
		&text,
		&status,
		&condition,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewNodeError("Get", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	if err != nil {
		return nil, persistence.NewNodeError("Get", workflowID, nodeID, fmt.Errorf("failed to scan node: %w", err))
	}

	record.NodeID = node.ID
	record.NodeType = node.Type

	if text.Valid {
		record.Text = &text.String
	}

	if status.Valid {
		messageStatus := models.MessageStatus(status.String)
		record.Status = &messageStatus
	}

	if condition.Valid {
		record.Condition = &condition.String
	}

	binding, err := nodes.Lookup(node.Type)
	if err != nil {
		return nil, persistence.NewNodeError("Get", workflowID, nodeID, err)
	}

	node.Config, err = binding.FromRecord(&record)
	if err != nil {
		return nil, persistence.NewNodeError("Get", workflowID, nodeID, err)
	}

	node.CreatedAt = node.CreatedAt.UTC()
	node.UpdatedAt = node.UpdatedAt.UTC()

	return &node, nil
}

// List returns the workflow's nodes in creation order without configurations.
func (r *NodeRepository) List(ctx context.Context, workflowID string) ([]*models.Node, error) {
	result := make([]*models.Node, 0)

	if !validID(workflowID) {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workflow_id, node_type, created_by, created_at, updated_at
		FROM nodes
		WHERE workflow_id = $1
		ORDER BY created_at, id`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	for rows.Next() {
		var node models.Node

		err := rows.Scan(&node.ID, &node.WorkflowID, &node.Type, &node.CreatedBy, &node.CreatedAt, &node.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}

		node.CreatedAt = node.CreatedAt.UTC()
		node.UpdatedAt = node.UpdatedAt.UTC()
		result = append(result, &node)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	return result, nil
}

// Update applies the patch to the node's configuration through its binding.
func (r *NodeRepository) Update(ctx context.Context, workflowID, nodeID string, patch map[string]any) (*models.Node, error) {
	node, err := r.Get(ctx, workflowID, nodeID)
	if err != nil {
		return nil, err
	}

	binding, err := nodes.Lookup(node.Type)
	if err != nil {
		return nil, persistence.NewNodeError("Update", workflowID, nodeID, err)
	}

	cfg, err := binding.Patch(node.Config, patch)
	if err != nil {
		return nil, persistence.NewNodeError("Update", workflowID, nodeID, err)
	}

	record := binding.Record(cfg)
	now := currentTime()

	_, err = r.db.ExecContext(ctx, `
		UPDATE node_configurations SET
			text = $1
		  , status = $2
		  , condition = $3
		  , updated_at = $4
		WHERE node_id = $5`,
		record.Text, record.Status, record.Condition, now, nodeID,
	)
	if err != nil {
		return nil, persistence.NewNodeError("Update", workflowID, nodeID, fmt.Errorf("failed to update node configuration: %w", err))
	}

	_, err = r.db.ExecContext(ctx, `UPDATE nodes SET updated_at = $1 WHERE id = $2`, now, nodeID)
	if err != nil {
		return nil, persistence.NewNodeError("Update", workflowID, nodeID, fmt.Errorf("failed to touch node: %w", err))
	}

	node.Config = cfg
	node.UpdatedAt = now

	return node, nil
}

// Delete removes the node; its configuration and edges cascade.
func (r *NodeRepository) Delete(ctx context.Context, workflowID, nodeID string) error {
	if !validID(workflowID) || !validID(nodeID) {
		return persistence.NewNodeError("Delete", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = $1 AND workflow_id = $2`, nodeID, workflowID)
	if err != nil {
		return persistence.NewNodeError("Delete", workflowID, nodeID, fmt.Errorf("failed to delete node: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewNodeError("Delete", workflowID, nodeID, fmt.Errorf("failed to get affected rows: %w", err))
	}

	if rowsAffected == 0 {
		return persistence.NewNodeError("Delete", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	return nil
}
