package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	t.Parallel()

	first := NewBaseEvent(WorkflowCreatedEvent, "wf-1", "user-1")
	second := NewBaseEvent(WorkflowCreatedEvent, "wf-1", "user-1")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, WorkflowCreatedEvent, first.Type)
	assert.Equal(t, "wf-1", first.WorkflowID)
	assert.Equal(t, "user-1", first.ActorID)
	assert.False(t, first.Timestamp.IsZero())
}

func TestEventTypes(t *testing.T) {
	t.Parallel()

	typed := []interface{ GetType() EventType }{
		WorkflowCreated{}, WorkflowUpdated{}, WorkflowDeleted{},
		NodeCreated{}, NodeUpdated{}, NodeDeleted{},
		EdgeCreated{}, EdgeUpdated{}, EdgeDeleted{},
		PermissionGranted{}, PermissionRevoked{},
	}

	require.Len(t, typed, len(EventTypes))

	for i, event := range typed {
		assert.Equal(t, EventTypes[i], event.GetType())
	}
}

func TestNodeCreated_JSON(t *testing.T) {
	t.Parallel()

	event := NodeCreated{
		BaseEvent: NewBaseEvent(NodeCreatedEvent, "wf-1", "user-1"),
		NodeID:    "node-1",
		NodeType:  "message",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "node.created", decoded["type"])
	assert.Equal(t, "wf-1", decoded["workflow_id"])
	assert.Equal(t, "node-1", decoded["node_id"])
	assert.Equal(t, "message", decoded["node_type"])
}
