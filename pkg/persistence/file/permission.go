package file

import (
	"context"
	"slices"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
)

type permissionRepository struct {
	store *store
}

func (r *permissionRepository) EffectivePermissions(_ context.Context, userID string) (access.Index, error) {
	grants := make([]*models.Permission, 0)

	for _, permission := range r.store.doc.Permissions {
		if permission.UserID == userID {
			grants = append(grants, permission)
		}
	}

	return access.NewIndex(grants), nil
}

func (r *permissionRepository) Grant(_ context.Context, permission *models.Permission) error {
	workflows := &workflowRepository{store: r.store}
	if !workflows.exists(permission.WorkflowID) {
		return persistence.NewWorkflowError("Grant", permission.WorkflowID, persistence.ErrWorkflowNotFound)
	}

	users := &userRepository{store: r.store}
	if !users.exists(permission.UserID) {
		return persistence.ErrUserNotFound
	}

	if r.index(permission.WorkflowID, permission.UserID, permission.Type) >= 0 {
		return persistence.ErrPermissionAlreadyExists
	}

	id, err := newID()
	if err != nil {
		return err
	}

	now := r.store.now()
	permission.ID = id
	permission.CreatedAt = now
	permission.UpdatedAt = now

	copied := *permission
	r.store.doc.Permissions = append(r.store.doc.Permissions, &copied)

	return nil
}

func (r *permissionRepository) Revoke(_ context.Context, workflowID, userID string, permissionType models.PermissionType) error {
	i := r.index(workflowID, userID, permissionType)
	if i < 0 {
		return persistence.ErrPermissionNotFound
	}

	r.store.doc.Permissions = slices.Delete(r.store.doc.Permissions, i, i+1)

	return nil
}

func (r *permissionRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.Permission, error) {
	permissions := make([]*models.Permission, 0)

	for _, permission := range r.store.doc.Permissions {
		if permission.WorkflowID == workflowID {
			copied := *permission
			permissions = append(permissions, &copied)
		}
	}

	return permissions, nil
}

func (r *permissionRepository) index(workflowID, userID string, permissionType models.PermissionType) int {
	return slices.IndexFunc(r.store.doc.Permissions, func(p *models.Permission) bool {
		return p.WorkflowID == workflowID && p.UserID == userID && p.Type == permissionType
	})
}
