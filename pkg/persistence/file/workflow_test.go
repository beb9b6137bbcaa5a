package file

import (
	"context"
	"testing"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grant(t *testing.T, p *Persistence, workflow *models.Workflow, user *models.User, permissionType models.PermissionType) {
	t.Helper()

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		return store.Permissions().Grant(ctx, &models.Permission{
			UserID:     user.ID,
			WorkflowID: workflow.ID,
			Type:       permissionType,
			CreatedBy:  workflow.CreatedBy,
		})
	})
	require.NoError(t, err)
}

func filterFor(t *testing.T, p *Persistence, user *models.User, intent access.Intent) access.Filter {
	t.Helper()

	var filter access.Filter

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		index, err := store.Permissions().EffectivePermissions(ctx, user.ID)
		if err != nil {
			return err
		}

		filter = access.NewFilter(user.ID, index, intent)

		return nil
	})
	require.NoError(t, err)

	return filter
}

func TestWorkflowRepository_VisibilityFollowsGrants(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	owner := createUser(t, p, "a@example.com")
	other := createUser(t, p, "b@example.com")

	owned := createWorkflow(t, p, owner, "owned")
	viewable := createWorkflow(t, p, owner, "viewable")
	editable := createWorkflow(t, p, owner, "editable")
	createWorkflow(t, p, owner, "private")

	grant(t, p, viewable, other, models.PermissionView)
	grant(t, p, editable, other, models.PermissionEdit)

	ownerView := filterFor(t, p, owner, access.IntentView)
	otherView := filterFor(t, p, other, access.IntentView)

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		ownerList, err := store.Workflows().List(ctx, ownerView)
		require.NoError(t, err)
		assert.Len(t, ownerList, 4)
		assert.Equal(t, owned.ID, ownerList[0].ID)

		otherList, err := store.Workflows().List(ctx, otherView)
		require.NoError(t, err)
		require.Len(t, otherList, 2)
		assert.Equal(t, viewable.ID, otherList[0].ID)
		assert.Equal(t, editable.ID, otherList[1].ID)

		_, err = store.Workflows().Get(ctx, otherView, owned.ID)
		require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

		return nil
	})
	require.NoError(t, err)
}

func TestWorkflowRepository_ViewGrantCannotUpdateOrDelete(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	owner := createUser(t, p, "a@example.com")
	viewer := createUser(t, p, "b@example.com")
	workflow := createWorkflow(t, p, owner, "shared")
	grant(t, p, workflow, viewer, models.PermissionView)

	name := "hijacked"
	viewerEdit := filterFor(t, p, viewer, access.IntentEdit)
	viewerDelete := filterFor(t, p, viewer, access.IntentDelete)
	viewerView := filterFor(t, p, viewer, access.IntentView)

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		_, err := store.Workflows().Update(ctx, viewerEdit, workflow.ID, models.WorkflowPatch{Name: &name})
		require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

		err = store.Workflows().Delete(ctx, viewerDelete, workflow.ID)
		require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

		found, err := store.Workflows().Get(ctx, viewerView, workflow.ID)
		require.NoError(t, err)
		assert.Equal(t, "shared", found.Name)

		return nil
	})
	require.NoError(t, err)
}

func TestWorkflowRepository_UpdateSkipsNilFields(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	owner := createUser(t, p, "a@example.com")
	description := "keep me"

	workflow := &models.Workflow{Name: "before", Description: &description, CreatedBy: owner.ID}
	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		return store.Workflows().Create(ctx, workflow)
	})
	require.NoError(t, err)

	name := "after"

	err = p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		updated, err := store.Workflows().Update(ctx, ownerFilter(owner.ID, access.IntentEdit), workflow.ID, models.WorkflowPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Name)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "keep me", *updated.Description)
		assert.False(t, updated.UpdatedAt.Before(workflow.UpdatedAt))

		return nil
	})
	require.NoError(t, err)
}

func TestWorkflowRepository_DeleteCascades(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	owner := createUser(t, p, "a@example.com")
	other := createUser(t, p, "b@example.com")
	workflow := createWorkflow(t, p, owner, "doomed")
	grant(t, p, workflow, other, models.PermissionView)

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		start, err := store.Nodes().Create(ctx, workflow.ID, models.StartConfiguration{}, owner.ID)
		require.NoError(t, err)

		end, err := store.Nodes().Create(ctx, workflow.ID, models.EndConfiguration{}, owner.ID)
		require.NoError(t, err)

		return store.Edges().Create(ctx, &models.Edge{
			WorkflowID:   workflow.ID,
			SourceNodeID: start.ID,
			TargetNodeID: end.ID,
			CreatedBy:    owner.ID,
		})
	})
	require.NoError(t, err)

	err = p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		return store.Workflows().Delete(ctx, ownerFilter(owner.ID, access.IntentDelete), workflow.ID)
	})
	require.NoError(t, err)

	assert.Empty(t, p.doc.Workflows)
	assert.Empty(t, p.doc.Nodes)
	assert.Empty(t, p.doc.Configurations)
	assert.Empty(t, p.doc.Edges)
	assert.Empty(t, p.doc.Permissions)
}

func TestPermissionRepository(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	owner := createUser(t, p, "a@example.com")
	other := createUser(t, p, "b@example.com")
	workflow := createWorkflow(t, p, owner, "shared")
	grant(t, p, workflow, other, models.PermissionEdit)

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		duplicate := &models.Permission{UserID: other.ID, WorkflowID: workflow.ID, Type: models.PermissionEdit, CreatedBy: owner.ID}
		require.ErrorIs(t, store.Permissions().Grant(ctx, duplicate), persistence.ErrPermissionAlreadyExists)

		unknown := &models.Permission{UserID: "missing", WorkflowID: workflow.ID, Type: models.PermissionView, CreatedBy: owner.ID}
		require.ErrorIs(t, store.Permissions().Grant(ctx, unknown), persistence.ErrUserNotFound)

		index, err := store.Permissions().EffectivePermissions(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, index.Has(models.PermissionEdit, workflow.ID))

		empty, err := store.Permissions().EffectivePermissions(ctx, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, empty.WorkflowIDs(models.PermissionView))

		listed, err := store.Permissions().ListByWorkflow(ctx, workflow.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, other.ID, listed[0].UserID)

		require.NoError(t, store.Permissions().Revoke(ctx, workflow.ID, other.ID, models.PermissionEdit))
		require.ErrorIs(t, store.Permissions().Revoke(ctx, workflow.ID, other.ID, models.PermissionEdit), persistence.ErrPermissionNotFound)

		return nil
	})
	require.NoError(t, err)
}
