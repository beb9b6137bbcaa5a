// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/google/uuid"
)

// CreateTestWorkflow creates a Workflow with default values that can be overridden.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:        uuid.NewString(),
		Name:      "Test Workflow",
		CreatedBy: uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowID sets the workflow ID.
func WithWorkflowID(id string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ID = id
	}
}

// WithOwner sets the workflow creator.
func WithOwner(userID string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.CreatedBy = userID
	}
}

// CreateTestPermission creates a grant of permissionType on workflowID for userID.
func CreateTestPermission(userID, workflowID string, permissionType models.PermissionType) *models.Permission {
	now := time.Now().UTC()

	return &models.Permission{
		ID:         uuid.NewString(),
		UserID:     userID,
		WorkflowID: workflowID,
		Type:       permissionType,
		CreatedBy:  uuid.NewString(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateTestConfiguration returns a valid configuration for the node type.
func CreateTestConfiguration(nodeType models.NodeType) models.Configuration {
	switch nodeType {
	case models.NodeTypeMessage:
		return models.MessageConfiguration{Text: "hello"}
	case models.NodeTypeCondition:
		return models.ConditionConfiguration{Condition: "answer == 'yes'"}
	case models.NodeTypeEnd:
		return models.EndConfiguration{}
	default:
		return models.StartConfiguration{}
	}
}
