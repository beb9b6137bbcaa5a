package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
)

const edgeColumns = `id, workflow_id, source_node_id, target_node_id, status, created_by, created_at, updated_at`

// EdgeRepository handles edge-related database operations.
type EdgeRepository struct {
	db     querier
	logger *slog.Logger
}

// NewEdgeRepository creates a new edge repository.
func NewEdgeRepository(db querier, logger *slog.Logger) *EdgeRepository {
	return &EdgeRepository{db: db, logger: logger}
}

func (r *EdgeRepository) Create(ctx context.Context, edge *models.Edge) error {
	id, err := newID()
	if err != nil {
		return persistence.NewEdgeError("Create", edge.WorkflowID, "", err)
	}

	now := currentTime()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO edges (`+edgeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, edge.WorkflowID, edge.SourceNodeID, edge.TargetNodeID, edge.Status, edge.CreatedBy, now, now,
	)
	if isUniqueViolation(err) {
		return persistence.NewEdgeError("Create", edge.WorkflowID, id, persistence.ErrEdgeAlreadyExists)
	}

	if isForeignKeyViolation(err) {
		return persistence.NewEdgeError("Create", edge.WorkflowID, id, persistence.ErrNodeNotFound)
	}

	if err != nil {
		return persistence.NewEdgeError("Create", edge.WorkflowID, id, fmt.Errorf("failed to insert edge: %w", err))
	}

	edge.ID = id
	edge.CreatedAt = now
	edge.UpdatedAt = now

	return nil
}

func (r *EdgeRepository) Get(ctx context.Context, workflowID, edgeID string) (*models.Edge, error) {
	if !validID(workflowID) || !validID(edgeID) {
		return nil, persistence.NewEdgeError("Get", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	edge, err := scanEdge(r.db.QueryRowContext(ctx, `
		SELECT `+edgeColumns+`
		FROM edges
		WHERE id = $1 AND workflow_id = $2`, edgeID, workflowID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewEdgeError("Get", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	if err != nil {
		return nil, persistence.NewEdgeError("Get", workflowID, edgeID, fmt.Errorf("failed to scan edge: %w", err))
	}

	return edge, nil
}

func (r *EdgeRepository) List(ctx context.Context, workflowID string) ([]*models.Edge, error) {
	edges := make([]*models.Edge, 0)

	if !validID(workflowID) {
		return edges, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+edgeColumns+`
		FROM edges
		WHERE workflow_id = $1
		ORDER BY created_at, id`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}

		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return edges, nil
}

func (r *EdgeRepository) Update(ctx context.Context, workflowID, edgeID string, status models.EdgeWeight) (*models.Edge, error) {
	if !validID(workflowID) || !validID(edgeID) {
		return nil, persistence.NewEdgeError("Update", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	edge, err := scanEdge(r.db.QueryRowContext(ctx, `
		UPDATE edges SET status = $1, updated_at = $2
		WHERE id = $3 AND workflow_id = $4
		RETURNING `+edgeColumns, status, currentTime(), edgeID, workflowID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewEdgeError("Update", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	if err != nil {
		return nil, persistence.NewEdgeError("Update", workflowID, edgeID, fmt.Errorf("failed to update edge: %w", err))
	}

	return edge, nil
}

func (r *EdgeRepository) Delete(ctx context.Context, workflowID, edgeID string) error {
	if !validID(workflowID) || !validID(edgeID) {
		return persistence.NewEdgeError("Delete", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE id = $1 AND workflow_id = $2`, edgeID, workflowID)
	if err != nil {
		return persistence.NewEdgeError("Delete", workflowID, edgeID, fmt.Errorf("failed to delete edge: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewEdgeError("Delete", workflowID, edgeID, fmt.Errorf("failed to get affected rows: %w", err))
	}

	if rowsAffected == 0 {
		return persistence.NewEdgeError("Delete", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	return nil
}

func scanEdge(row scanner) (*models.Edge, error) {
	var edge models.Edge

	err := row.Scan(
		&edge.ID,
		&edge.WorkflowID,
		&edge.SourceNodeID,
		&edge.TargetNodeID,
		&edge.Status,
		&edge.CreatedBy,
		&edge.CreatedAt,
		&edge.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	edge.CreatedAt = edge.CreatedAt.UTC()
	edge.UpdatedAt = edge.UpdatedAt.UTC()

	return &edge, nil
}
