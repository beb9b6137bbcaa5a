// Package models provides the domain models for workflow definitions, their nodes and edges,
// and the users and grants that control access to them.
package models

import "time"

// Workflow is a named container of nodes and edges owned by the user who created it.
type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkflowPatch carries a partial workflow update. Nil fields are skipped, never written as null.
type WorkflowPatch struct {
	Name        *string
	Description *string
}

// IsEmpty reports whether the patch would change nothing.
func (p WorkflowPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

// Apply copies the set fields of the patch onto the workflow.
func (p WorkflowPatch) Apply(workflow *Workflow) {
	if p.Name != nil {
		workflow.Name = *p.Name
	}

	if p.Description != nil {
		description := *p.Description
		workflow.Description = &description
	}
}
