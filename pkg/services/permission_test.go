package services

import (
	"testing"

	"github.com/dukex/workflows-api/pkg/events"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermission_GrantListRevoke(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	workflow := f.createWorkflow(t, f.alice, "wf")

	grant, err := f.permissions.Grant(t.Context(), f.alice, workflow.ID, f.bob.ID, models.PermissionEdit)
	require.NoError(t, err)
	assert.NotEmpty(t, grant.ID)
	assert.Equal(t, f.alice.ID, grant.CreatedBy)

	_, err = f.permissions.Grant(t.Context(), f.alice, workflow.ID, f.bob.ID, models.PermissionEdit)
	require.ErrorIs(t, err, persistence.ErrPermissionAlreadyExists)

	grants, err := f.permissions.List(t.Context(), f.alice, workflow.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, f.bob.ID, grants[0].UserID)

	require.NoError(t, f.permissions.Revoke(t.Context(), f.alice, workflow.ID, f.bob.ID, models.PermissionEdit))

	err = f.permissions.Revoke(t.Context(), f.alice, workflow.ID, f.bob.ID, models.PermissionEdit)
	require.ErrorIs(t, err, persistence.ErrPermissionNotFound)

	_, err = f.workflows.FetchByID(t.Context(), f.bob, workflow.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	assert.Contains(t, f.events.PublishedTypes(), events.PermissionGrantedEvent)
	assert.Contains(t, f.events.PublishedTypes(), events.PermissionRevokedEvent)
}

func TestPermission_OnlyOwnerManagesGrants(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	workflow := f.createWorkflow(t, f.alice, "wf")

	_, err := f.permissions.List(t.Context(), f.bob, workflow.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	f.grant(t, workflow, f.bob, models.PermissionEdit)

	_, err = f.permissions.List(t.Context(), f.bob, workflow.ID)
	require.ErrorIs(t, err, ErrForbidden)

	carol := f.createUser(t, "carol@example.com")

	_, err = f.permissions.Grant(t.Context(), f.bob, workflow.ID, carol.ID, models.PermissionView)
	require.ErrorIs(t, err, ErrForbidden)

	err = f.permissions.Revoke(t.Context(), f.bob, workflow.ID, f.bob.ID, models.PermissionEdit)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPermission_Grant_Invalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	workflow := f.createWorkflow(t, f.alice, "wf")

	_, err := f.permissions.Grant(t.Context(), f.alice, workflow.ID, f.bob.ID, models.PermissionType("admin"))
	assert.True(t, IsValidationError(err))

	_, err = f.permissions.Grant(t.Context(), f.alice, workflow.ID, "missing-user", models.PermissionView)
	require.ErrorIs(t, err, persistence.ErrUserNotFound)
}
