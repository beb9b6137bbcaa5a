package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerFilter(userID string, intent access.Intent) access.Filter {
	return access.NewFilter(userID, access.NewIndex(nil), intent)
}

func createUser(t *testing.T, p *Persistence, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "hash"}
	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		return store.Users().Create(ctx, user)
	})
	require.NoError(t, err)

	return user
}

func createWorkflow(t *testing.T, p *Persistence, owner *models.User, name string) *models.Workflow {
	t.Helper()

	workflow := &models.Workflow{Name: name, CreatedBy: owner.ID}
	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		return store.Workflows().Create(ctx, workflow)
	})
	require.NoError(t, err)

	return workflow
}

func TestNewPersistence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/tmp/test", NewPersistence("/tmp/test").root)
	assert.Equal(t, "/tmp/test", NewPersistence("file:///tmp/test").root)
}

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewPersistence(t.TempDir()).HealthCheck(t.Context()))
	require.Error(t, NewPersistence(filepath.Join(t.TempDir(), "missing")).HealthCheck(t.Context()))
	require.NoError(t, NewPersistence(t.TempDir()).Close(t.Context()))
}

func TestPersistence_TransactionCommitsAndSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewPersistence(dir)
	owner := createUser(t, p, "owner@example.com")
	workflow := createWorkflow(t, p, owner, "persisted")

	_, err := os.Stat(filepath.Join(dir, documentName))
	require.NoError(t, err)

	reopened := NewPersistence(dir)
	err = reopened.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		found, err := store.Workflows().Get(ctx, ownerFilter(owner.ID, access.IntentView), workflow.ID)
		require.NoError(t, err)
		assert.Equal(t, "persisted", found.Name)

		return nil
	})
	require.NoError(t, err)
}

func TestPersistence_TransactionRollsBackOnError(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	owner := createUser(t, p, "owner@example.com")
	boom := errors.New("boom")

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		require.NoError(t, store.Workflows().Create(ctx, &models.Workflow{Name: "discarded", CreatedBy: owner.ID}))

		return boom
	})
	require.ErrorIs(t, err, boom)

	err = p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		workflows, err := store.Workflows().List(ctx, ownerFilter(owner.ID, access.IntentView))
		require.NoError(t, err)
		assert.Empty(t, workflows)

		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	user := createUser(t, p, "someone@example.com")
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	err := p.Transaction(t.Context(), func(ctx context.Context, store persistence.Store) error {
		duplicate := &models.User{Email: "SOMEONE@example.com", PasswordHash: "x"}
		require.ErrorIs(t, store.Users().Create(ctx, duplicate), persistence.ErrUserAlreadyExists)

		byEmail, err := store.Users().GetByEmail(ctx, "someone@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, "hash", byEmail.PasswordHash)

		byID, err := store.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)

		_, err = store.Users().GetByID(ctx, "missing")
		require.ErrorIs(t, err, persistence.ErrUserNotFound)

		return nil
	})
	require.NoError(t, err)
}
