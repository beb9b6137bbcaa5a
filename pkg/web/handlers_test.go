package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/workflows-api/pkg/auth"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/persistence/file"
	"github.com/dukex/workflows-api/pkg/services"
	"github.com/dukex/workflows-api/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const malformedID = "not-a-uuid"

type testClient struct {
	t   *testing.T
	app *fiber.App
}

type session struct {
	ID    string
	Token string
}

func setupTestApp(t *testing.T) *testClient {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	publisher := eventbus.NoopEventBus{}

	config := auth.DefaultConfig()
	config.AccessSecret = []byte("access-secret")
	config.RefreshSecret = []byte("refresh-secret")
	config.BcryptCost = bcrypt.MinCost

	provider, err := auth.NewProvider(config)
	require.NoError(t, err)

	handlers := web.NewAPIHandlers(web.Services{
		Auth:        services.NewAuth(persistence, provider, nil),
		Workflows:   services.NewWorkflow(persistence, publisher, nil),
		Nodes:       services.NewNode(persistence, publisher, nil),
		Edges:       services.NewEdge(persistence, publisher, nil),
		Permissions: services.NewPermission(persistence, publisher, nil),
	}, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Routes(app)

	return &testClient{t: t, app: app}
}

// do sends a request and decodes a JSON object response, if any.
func (tc *testClient) do(method, path, token string, body any) (int, map[string]any) {
	tc.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(tc.t, err)

			raw = string(encoded)
		}

		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.app.Test(req)
	require.NoError(tc.t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			tc.t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(tc.t, err)

	if len(data) == 0 {
		return resp.StatusCode, nil
	}

	var decoded map[string]any
	require.NoError(tc.t, json.Unmarshal(data, &decoded), string(data))

	return resp.StatusCode, decoded
}

func (tc *testClient) signUp(email string) session {
	tc.t.Helper()

	status, body := tc.do(http.MethodPost, "/auth/register", "", web.RegisterRequest{Email: email, Password: "password123"})
	require.Equal(tc.t, http.StatusCreated, status, body)

	id := body["id"].(string)

	status, body = tc.do(http.MethodPost, "/auth/login", "", web.LoginRequest{Email: email, Password: "password123"})
	require.Equal(tc.t, http.StatusOK, status, body)

	return session{ID: id, Token: body["access"].(string)}
}

func (tc *testClient) createWorkflow(owner session, body any) string {
	tc.t.Helper()

	status, created := tc.do(http.MethodPost, "/workflows", owner.Token, body)
	require.Equal(tc.t, http.StatusCreated, status, created)

	return created["id"].(string)
}

func (tc *testClient) grant(owner session, workflowID, userID, permissionType string) {
	tc.t.Helper()

	status, body := tc.do(http.MethodPost, "/workflows/"+workflowID+"/permissions", owner.Token,
		web.GrantPermissionRequest{UserID: userID, PermissionType: permissionType})
	require.Equal(tc.t, http.StatusCreated, status, body)
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)

	status, body := tc.do(http.MethodPost, "/auth/register", "", web.RegisterRequest{Email: "alice@example.com", Password: "password123"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password_hash")

	status, body = tc.do(http.MethodPost, "/auth/register", "", web.RegisterRequest{Email: "Alice@example.com", Password: "password123"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", body["type"])

	status, body = tc.do(http.MethodPost, "/auth/register", "", web.RegisterRequest{Email: "not-an-email", Password: "password123"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation_error", body["type"])

	status, body = tc.do(http.MethodPost, "/auth/login", "", web.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "authentication_failed", body["type"])

	status, tokens := tc.do(http.MethodPost, "/auth/login", "", web.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])

	status, body = tc.do(http.MethodPost, "/auth/refresh", "", web.RefreshRequest{Refresh: tokens["refresh"].(string)})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access"])

	status, _ = tc.do(http.MethodPost, "/auth/refresh", "", web.RefreshRequest{Refresh: tokens["access"].(string)})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = tc.do(http.MethodPost, "/auth/login", "", `{"email":`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation_error", body["type"])
}

func TestWorkflowRoutesRequireAuthentication(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)

	status, body := tc.do(http.MethodGet, "/workflows", "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "authentication_required", body["type"])

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	req.Header.Set("Authorization", "Basic YWxpY2U6cGFzcw==")

	resp, err := tc.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	status, body = tc.do(http.MethodGet, "/workflows", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "authentication_failed", body["type"])
}

func TestWorkflowCRUD(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)
	alice := tc.signUp("alice@example.com")

	id := tc.createWorkflow(alice, map[string]any{"name": "Onboarding", "description": "welcome"})

	status, body := tc.do(http.MethodGet, "/workflows/"+id, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Onboarding", body["name"])
	assert.Equal(t, alice.ID, body["created_by"])

	status, body = tc.do(http.MethodGet, "/workflows", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["workflows"], 1)

	// Omitting description leaves it unchanged.
	status, body = tc.do(http.MethodPatch, "/workflows/"+id, alice.Token, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", body["name"])
	assert.Equal(t, "welcome", body["description"])

	// A null description is ignored.
	status, body = tc.do(http.MethodPatch, "/workflows/"+id, alice.Token, `{"description": null}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "welcome", body["description"])

	status, body = tc.do(http.MethodPatch, "/workflows/"+id, alice.Token, map[string]any{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, body = tc.do(http.MethodDelete, "/workflows/"+id, alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Nil(t, body)

	status, body = tc.do(http.MethodGet, "/workflows/"+id, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["type"])
}

func TestWorkflowCreate_Validation(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)
	alice := tc.signUp("alice@example.com")

	status, body := tc.do(http.MethodPost, "/workflows", alice.Token, map[string]any{"description": "no name"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation_error", body["type"])

	status, _ = tc.do(http.MethodPost, "/workflows", alice.Token, "{not json")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = tc.do(http.MethodGet, "/workflows/"+malformedID, alice.Token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestWorkflowVisibility(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)
	alice := tc.signUp("alice@example.com")
	bob := tc.signUp("bob@example.com")

	id := tc.createWorkflow(alice, map[string]any{"name": "Private"})

	status, _ := tc.do(http.MethodGet, "/workflows/"+id, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = tc.do(http.MethodDelete, "/workflows/"+id, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	tc.grant(alice, id, bob.ID, "view")

	status, body := tc.do(http.MethodGet, "/workflows/"+id, bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Private", body["name"])

	status, _ = tc.do(http.MethodPatch, "/workflows/"+id, bob.Token, map[string]any{"name": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = tc.do(http.MethodDelete, "/workflows/"+id, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	tc.grant(alice, id, bob.ID, "delete")

	status, _ = tc.do(http.MethodDelete, "/workflows/"+id, bob.Token, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestMessageNodeLifecycle(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)
	alice := tc.signUp("alice@example.com")
	id := tc.createWorkflow(alice, map[string]any{"name": "Messages"})
	nodes := "/workflows/" + id + "/nodes"

	status, created := tc.do(http.MethodPost, nodes, alice.Token, map[string]any{"node_type": "message", "text": "hi"})
	require.Equal(t, http.StatusCreated, status, created)

	nodeURL := nodes + "/" + created["id"].(string)

	status, body := tc.do(http.MethodGet, nodeURL, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "message", body["node_type"])
	assert.Equal(t, "hi", body["text"])
	assert.Contains(t, body, "status")
	assert.Nil(t, body["status"])

	status, body = tc.do(http.MethodPatch, nodeURL, alice.Token, map[string]any{"status": "sent"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = tc.do(http.MethodGet, nodeURL, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "sent", body["status"])
	assert.Equal(t, "hi", body["text"])

	status, body = tc.do(http.MethodPatch, nodeURL, alice.Token, map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, body = tc.do(http.MethodPatch, nodeURL, alice.Token, map[string]any{"node_type": "end"})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, body = tc.do(http.MethodGet, nodes+"?include_configuration=true", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["nodes"], 1)
	assert.Equal(t, "hi", body["nodes"].([]any)[0].(map[string]any)["text"])

	status, _ = tc.do(http.MethodDelete, nodeURL, alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = tc.do(http.MethodGet, nodeURL, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["type"])
}

func TestNodeCreate_Validation(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)
	alice := tc.signUp("alice@example.com")
	id := tc.createWorkflow(alice, map[string]any{"name": "Nodes"})
	nodes := "/workflows/" + id + "/nodes"

	tests := []struct {
		name string
		body any
	}{
		{"missing node_type", map[string]any{"text": "hi"}},
		{"unknown node_type", map[string]any{"node_type": "loop"}},
		{"message without text", map[string]any{"node_type": "message"}},
		{"condition with number", map[string]any{"node_type": "condition", "condition": 42}},
		{"not an object", `["start"]`},
	}

	for _, tt := range tests {
		status, body := tc.do(http.MethodPost, nodes, alice.Token, tt.body)
		assert.Equal(t, http.StatusUnprocessableEntity, status, tt.name)
		assert.Equal(t, "validation_error", body["type"], tt.name)
	}

	status, body := tc.do(http.MethodPost, nodes, alice.Token, map[string]any{"node_type": "condition", "condition": "x > 1"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "condition", body["node_type"])
	assert.Equal(t, "x > 1", body["condition"])
}

func TestEdgeEndpoints(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)
	alice := tc.signUp("alice@example.com")
	id := tc.createWorkflow(alice, map[string]any{"name": "Graph"})
	base := "/workflows/" + id

	_, start := tc.do(http.MethodPost, base+"/nodes", alice.Token, map[string]any{"node_type": "start"})
	_, end := tc.do(http.MethodPost, base+"/nodes", alice.Token, map[string]any{"node_type": "end"})

	edgeBody := web.CreateEdgeRequest{SourceNodeID: start["id"].(string), TargetNodeID: end["id"].(string)}

	status, edge := tc.do(http.MethodPost, base+"/edges", alice.Token, edgeBody)
	require.Equal(t, http.StatusCreated, status, edge)
	assert.InDelta(t, 0, edge["status"], 0)

	status, body := tc.do(http.MethodPost, base+"/edges", alice.Token, edgeBody)
	assert.Equal(t, http.StatusConflict, status, body)

	status, body = tc.do(http.MethodPost, base+"/edges", alice.Token, web.CreateEdgeRequest{
		SourceNodeID: start["id"].(string),
		TargetNodeID: "0190f7a0-0000-7000-8000-000000000000",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	edgeURL := base + "/edges/" + edge["id"].(string)

	status, body = tc.do(http.MethodPatch, edgeURL, alice.Token, map[string]any{"status": -1})
	require.Equal(t, http.StatusOK, status, body)
	assert.InDelta(t, -1, body["status"], 0)

	status, _ = tc.do(http.MethodPatch, edgeURL, alice.Token, map[string]any{"status": 5})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = tc.do(http.MethodGet, base+"/edges", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["edges"], 1)

	status, _ = tc.do(http.MethodDelete, edgeURL, alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestPermissionEndpoints(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)
	alice := tc.signUp("alice@example.com")
	bob := tc.signUp("bob@example.com")
	id := tc.createWorkflow(alice, map[string]any{"name": "Shared"})
	permissions := "/workflows/" + id + "/permissions"

	status, _ := tc.do(http.MethodGet, permissions, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	tc.grant(alice, id, bob.ID, "edit")

	status, body := tc.do(http.MethodGet, permissions, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["type"])

	status, _ = tc.do(http.MethodPost, permissions, alice.Token, web.GrantPermissionRequest{UserID: bob.ID, PermissionType: "edit"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = tc.do(http.MethodPost, permissions, alice.Token, web.GrantPermissionRequest{UserID: bob.ID, PermissionType: "admin"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = tc.do(http.MethodPost, permissions, alice.Token,
		web.GrantPermissionRequest{UserID: "0190f7a0-0000-7000-8000-000000000000", PermissionType: "view"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = tc.do(http.MethodGet, permissions, alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["permissions"], 1)

	status, _ = tc.do(http.MethodPatch, "/workflows/"+id, bob.Token, map[string]any{"name": "Edited by bob"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = tc.do(http.MethodDelete, permissions+"/"+bob.ID+"/edit", alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = tc.do(http.MethodDelete, permissions+"/"+bob.ID+"/edit", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = tc.do(http.MethodDelete, permissions+"/"+bob.ID+"/owner", alice.Token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = tc.do(http.MethodGet, "/workflows/"+id, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)

	status, body := tc.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestNodeTypes(t *testing.T) {
	t.Parallel()

	tc := setupTestApp(t)

	status, body := tc.do(http.MethodGet, "/node-types", "", nil)
	require.Equal(t, http.StatusOK, status)

	nodeTypes, ok := body["node_types"].([]any)
	require.True(t, ok)
	require.Len(t, nodeTypes, 4)

	names := make([]string, 0, len(nodeTypes))
	for _, raw := range nodeTypes {
		info, ok := raw.(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, info["description"])
		assert.NotNil(t, info["schema"])

		names = append(names, info["node_type"].(string))
	}

	assert.Equal(t, []string{"start", "message", "condition", "end"}, names)
}
