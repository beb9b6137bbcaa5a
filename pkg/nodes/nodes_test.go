package nodes

import (
	"testing"
	"time"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(status models.MessageStatus) *models.MessageStatus {
	return &status
}

func TestLookup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.NodeTypes, Types())

	for _, nodeType := range models.NodeTypes {
		binding, err := Lookup(nodeType)
		require.NoError(t, err)
		assert.Equal(t, nodeType, binding.Type)
		assert.NotEmpty(t, binding.Description)
		assert.Equal(t, "object", binding.Schema()["type"])
	}

	_, err := Lookup("loop")
	require.ErrorIs(t, err, ErrUnknownNodeType)

	_, err = For(nil)
	require.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestBinding_Decode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		nodeType models.NodeType
		data     map[string]any
		expected models.Configuration
		wantErr  bool
	}{
		{
			name:     "start ignores extra fields",
			nodeType: models.NodeTypeStart,
			data:     map[string]any{"unused": true},
			expected: models.StartConfiguration{},
		},
		{
			name:     "end with nil payload",
			nodeType: models.NodeTypeEnd,
			data:     nil,
			expected: models.EndConfiguration{},
		},
		{
			name:     "message without status",
			nodeType: models.NodeTypeMessage,
			data:     map[string]any{"text": "hi"},
			expected: models.MessageConfiguration{Text: "hi"},
		},
		{
			name:     "message with status",
			nodeType: models.NodeTypeMessage,
			data:     map[string]any{"text": "hi", "status": "sent"},
			expected: models.MessageConfiguration{Text: "hi", Status: statusPtr(models.MessageStatusSent)},
		},
		{
			name:     "message with null status",
			nodeType: models.NodeTypeMessage,
			data:     map[string]any{"text": "hi", "status": nil},
			expected: models.MessageConfiguration{Text: "hi"},
		},
		{
			name:     "message missing text",
			nodeType: models.NodeTypeMessage,
			data:     map[string]any{"status": "sent"},
			wantErr:  true,
		},
		{
			name:     "message with numeric text",
			nodeType: models.NodeTypeMessage,
			data:     map[string]any{"text": 12.0},
			wantErr:  true,
		},
		{
			name:     "message with unknown status",
			nodeType: models.NodeTypeMessage,
			data:     map[string]any{"text": "hi", "status": "archived"},
			wantErr:  true,
		},
		{
			name:     "condition",
			nodeType: models.NodeTypeCondition,
			data:     map[string]any{"condition": "x > 1"},
			expected: models.ConditionConfiguration{Condition: "x > 1"},
		},
		{
			name:     "condition empty",
			nodeType: models.NodeTypeCondition,
			data:     map[string]any{"condition": ""},
			wantErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			binding, err := Lookup(tc.nodeType)
			require.NoError(t, err)

			cfg, err := binding.Decode(tc.data)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfiguration)

				var cfgErr *ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tc.nodeType, cfgErr.NodeType)
				assert.NotEmpty(t, cfgErr.Details)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
			assert.Equal(t, tc.nodeType, cfg.NodeType())
		})
	}
}

func TestBinding_PatchMessage(t *testing.T) {
	t.Parallel()

	binding, err := Lookup(models.NodeTypeMessage)
	require.NoError(t, err)

	current := models.MessageConfiguration{Text: "hi"}

	patched, err := binding.Patch(current, map[string]any{"status": "sent"})
	require.NoError(t, err)
	assert.Equal(t, models.MessageConfiguration{Text: "hi", Status: statusPtr(models.MessageStatusSent)}, patched)

	cleared, err := binding.Patch(patched, map[string]any{"status": nil})
	require.NoError(t, err)
	assert.Equal(t, models.MessageConfiguration{Text: "hi"}, cleared)

	unchanged, err := binding.Patch(patched, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, patched, unchanged)

	_, err = binding.Patch(current, map[string]any{"text": nil})
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = binding.Patch(models.EndConfiguration{}, map[string]any{"text": "x"})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestBinding_RecordRoundTrip(t *testing.T) {
	t.Parallel()

	configurations := []models.Configuration{
		models.StartConfiguration{},
		models.MessageConfiguration{Text: "hi", Status: statusPtr(models.MessageStatusOpened)},
		models.MessageConfiguration{Text: "no status"},
		models.ConditionConfiguration{Condition: "a == b"},
		models.EndConfiguration{},
	}

	for _, cfg := range configurations {
		binding, err := For(cfg)
		require.NoError(t, err)

		record := binding.Record(cfg)
		assert.Equal(t, cfg.NodeType(), record.NodeType)

		restored, err := binding.FromRecord(record)
		require.NoError(t, err)
		assert.Equal(t, cfg, restored)
	}
}

func TestBinding_RecordColumnsGatedByType(t *testing.T) {
	t.Parallel()

	binding, err := Lookup(models.NodeTypeCondition)
	require.NoError(t, err)

	record := binding.Record(models.ConditionConfiguration{Condition: "ok"})
	assert.Nil(t, record.Text)
	assert.Nil(t, record.Status)
	require.NotNil(t, record.Condition)
	assert.Equal(t, "ok", *record.Condition)

	message, err := Lookup(models.NodeTypeMessage)
	require.NoError(t, err)

	_, err = message.FromRecord(record)
	require.Error(t, err)

	_, err = message.FromRecord(&models.ConfigurationRecord{NodeType: models.NodeTypeMessage})
	require.Error(t, err)
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	node := &models.Node{
		ID:         "node-1",
		WorkflowID: "wf-1",
		Type:       models.NodeTypeMessage,
		Config:     models.MessageConfiguration{Text: "hi"},
		CreatedBy:  "user-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	view := Flatten(node)

	assert.Equal(t, "node-1", view["id"])
	assert.Equal(t, models.NodeTypeMessage, view["node_type"])
	assert.Equal(t, "wf-1", view["workflow_id"])
	assert.Equal(t, "hi", view["text"])
	assert.Contains(t, view, "status")
	assert.Nil(t, view["status"])

	node.Config = nil
	identity := Flatten(node)
	assert.NotContains(t, identity, "text")
	assert.Equal(t, "node-1", identity["id"])
}

func TestIsIdentityKey(t *testing.T) {
	t.Parallel()

	assert.True(t, IsIdentityKey("id"))
	assert.True(t, IsIdentityKey("node_type"))
	assert.False(t, IsIdentityKey("text"))
}
