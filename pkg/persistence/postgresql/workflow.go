package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/lib/pq"
)

const workflowColumns = `
			id
		  , name
		  , description
		  , created_by
		  , created_at
		  , updated_at`

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     querier
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db querier, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// accessClause renders the filter as "creator or granted id" starting at placeholder $n.
func accessClause(filter access.Filter, n int) (string, []any) {
	clause := fmt.Sprintf("(created_by = $%d OR id = ANY($%d::uuid[]))", n, n+1)

	return clause, []any{filter.UserID, pq.Array(filter.WorkflowIDs())}
}

// Get returns the workflow when it exists and satisfies the filter.
func (r *WorkflowRepository) Get(ctx context.Context, filter access.Filter, id string) (*models.Workflow, error) {
	if !validID(id) {
		return nil, persistence.NewWorkflowError("Get", id, persistence.ErrWorkflowNotFound)
	}

	clause, args := accessClause(filter, 2)
	query := `SELECT` + workflowColumns + `
		FROM workflows
		WHERE id = $1 AND ` + clause

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, append([]any{id}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewWorkflowError("Get", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewWorkflowError("Get", id, fmt.Errorf("failed to scan workflow: %w", err))
	}

	return workflow, nil
}

// List returns every workflow satisfying the filter in creation order.
func (r *WorkflowRepository) List(ctx context.Context, filter access.Filter) ([]*models.Workflow, error) {
	clause, args := accessClause(filter, 1)
	query := `SELECT` + workflowColumns + `
		FROM workflows
		WHERE ` + clause + `
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// Create inserts the workflow, assigning its id and timestamps.
func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) error {
	id, err := newID()
	if err != nil {
		return persistence.NewWorkflowError("Create", "", err)
	}

	now := currentTime()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, workflow.Name, workflow.Description, workflow.CreatedBy, now, now,
	)
	if err != nil {
		return persistence.NewWorkflowError("Create", id, fmt.Errorf("failed to insert workflow: %w", err))
	}

	workflow.ID = id
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	return nil
}

// Update writes the non-nil patch fields of a workflow satisfying the filter.
func (r *WorkflowRepository) Update(ctx context.Context, filter access.Filter, id string, patch models.WorkflowPatch) (*models.Workflow, error) {
	if !validID(id) {
		return nil, persistence.NewWorkflowError("Update", id, persistence.ErrWorkflowNotFound)
	}

	clause, args := accessClause(filter, 5)
	query := `
		UPDATE workflows SET
			name = COALESCE($1, name)
		  , description = COALESCE($2, description)
		  , updated_at = $3
		WHERE id = $4 AND ` + clause + `
		RETURNING` + workflowColumns

	params := append([]any{patch.Name, patch.Description, currentTime(), id}, args...)

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewWorkflowError("Update", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewWorkflowError("Update", id, fmt.Errorf("failed to update workflow: %w", err))
	}

	return workflow, nil
}

// Delete removes a workflow satisfying the filter; foreign keys cascade to its children.
func (r *WorkflowRepository) Delete(ctx context.Context, filter access.Filter, id string) error {
	if !validID(id) {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	clause, args := accessClause(filter, 2)

	result, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1 AND `+clause, append([]any{id}, args...)...)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, fmt.Errorf("failed to delete workflow: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, fmt.Errorf("failed to get affected rows: %w", err))
	}

	if rowsAffected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		description sql.NullString
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&description,
		&workflow.CreatedBy,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		workflow.Description = &description.String
	}

	workflow.CreatedAt = workflow.CreatedAt.UTC()
	workflow.UpdatedAt = workflow.UpdatedAt.UTC()

	return &workflow, nil
}
