package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/workflows-api/pkg/auth"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/mocks"
	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/dukex/workflows-api/pkg/persistence/file"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTestApp(t *testing.T, p persistence.Persistence) *fiber.App {
	t.Helper()

	config := auth.DefaultConfig()
	config.AccessSecret = []byte("access")
	config.RefreshSecret = []byte("refresh")
	config.BcryptCost = bcrypt.MinCost

	provider, err := auth.NewProvider(config)
	require.NoError(t, err)

	return NewAPI(slog.Default(), p, eventbus.NoopEventBus{}, provider).App()
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, file.NewPersistence(t.TempDir()))

	status, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Workflows API", body)
}

func TestAPI_Probes(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, file.NewPersistence(t.TempDir()))

	for _, path := range []string{"/livez", "/readyz"} {
		status, body := get(t, app, path)
		assert.Equal(t, http.StatusOK, status, path)
		assert.Equal(t, "OK", body, path)
	}

	status, body := get(t, app, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"healthy"`)
}

func TestAPI_ReadinessFailsWhenStorageIsDown(t *testing.T) {
	t.Parallel()

	broken := &mocks.MockPersistence{}
	broken.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	app := setupTestApp(t, broken)

	status, _ := get(t, app, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, body := get(t, app, "/health")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "connection refused")

	status, _ = get(t, app, "/livez")
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_WorkflowsRequireAuthentication(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, file.NewPersistence(t.TempDir()))

	status, body := get(t, app, "/workflows")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "authentication_required")
}
