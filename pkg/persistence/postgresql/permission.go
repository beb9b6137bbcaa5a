package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
)

// PermissionRepository handles permission grant database operations.
type PermissionRepository struct {
	db     querier
	logger *slog.Logger
}

// NewPermissionRepository creates a new permission repository.
func NewPermissionRepository(db querier, logger *slog.Logger) *PermissionRepository {
	return &PermissionRepository{db: db, logger: logger}
}

const permissionColumns = `id, user_id, workflow_id, permission_type, created_by, created_at, updated_at`

// EffectivePermissions loads every grant of the user into an index.
func (r *PermissionRepository) EffectivePermissions(ctx context.Context, userID string) (access.Index, error) {
	if !validID(userID) {
		return access.NewIndex(nil), nil
	}

	grants, err := r.list(ctx, "user_id = $1", userID)
	if err != nil {
		return nil, err
	}

	return access.NewIndex(grants), nil
}

func (r *PermissionRepository) Grant(ctx context.Context, permission *models.Permission) error {
	if !validID(permission.UserID) {
		return persistence.ErrUserNotFound
	}

	id, err := newID()
	if err != nil {
		return err
	}

	now := currentTime()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO permissions (`+permissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, permission.UserID, permission.WorkflowID, permission.Type, permission.CreatedBy, now, now,
	)
	if isUniqueViolation(err) {
		return persistence.ErrPermissionAlreadyExists
	}

	// The workflow was loaded by the caller, so a dangling reference is the grantee.
	if isForeignKeyViolation(err) {
		return persistence.ErrUserNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to insert permission: %w", err)
	}

	permission.ID = id
	permission.CreatedAt = now
	permission.UpdatedAt = now

	return nil
}

func (r *PermissionRepository) Revoke(ctx context.Context, workflowID, userID string, permissionType models.PermissionType) error {
	if !validID(workflowID) || !validID(userID) {
		return persistence.ErrPermissionNotFound
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM permissions
		WHERE workflow_id = $1 AND user_id = $2 AND permission_type = $3`,
		workflowID, userID, permissionType,
	)
	if err != nil {
		return fmt.Errorf("failed to delete permission: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrPermissionNotFound
	}

	return nil
}

func (r *PermissionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Permission, error) {
	if !validID(workflowID) {
		return []*models.Permission{}, nil
	}

	return r.list(ctx, "workflow_id = $1", workflowID)
}

func (r *PermissionRepository) list(ctx context.Context, condition string, arg any) ([]*models.Permission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+permissionColumns+`
		FROM permissions
		WHERE `+condition+`
		ORDER BY created_at, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	permissions := make([]*models.Permission, 0)

	for rows.Next() {
		var permission models.Permission

		err := rows.Scan(
			&permission.ID,
			&permission.UserID,
			&permission.WorkflowID,
			&permission.Type,
			&permission.CreatedBy,
			&permission.CreatedAt,
			&permission.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}

		permission.CreatedAt = permission.CreatedAt.UTC()
		permission.UpdatedAt = permission.UpdatedAt.UTC()
		permissions = append(permissions, &permission)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating permissions: %w", err)
	}

	return permissions, nil
}
