// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/dukex/workflows-api/pkg/models"

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginRequest represents the request body for exchanging credentials for tokens.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=255"`
	Description *string `json:"description"`
}

// UpdateWorkflowRequest represents the request body for updating an existing workflow.
// All fields are optional; a null field is treated like an absent one.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
}

func (r UpdateWorkflowRequest) Patch() models.WorkflowPatch {
	return models.WorkflowPatch{Name: r.Name, Description: r.Description}
}

// CreateEdgeRequest represents the request body for connecting two nodes. A missing
// status defaults to 0.
type CreateEdgeRequest struct {
	SourceNodeID string `json:"source_node_id" validate:"required,uuid"`
	TargetNodeID string `json:"target_node_id" validate:"required,uuid"`
	Status       *int   `json:"status"         validate:"omitempty,oneof=-1 0 1"`
}

type UpdateEdgeRequest struct {
	Status *int `json:"status" validate:"required,oneof=-1 0 1"`
}

// GrantPermissionRequest represents the request body for granting a right on a workflow.
type GrantPermissionRequest struct {
	UserID         string `json:"user_id"         validate:"required,uuid"`
	PermissionType string `json:"permission_type" validate:"required,oneof=view edit delete"`
}

// NodeTypeInfo describes a node type and the JSON schema of its configuration payload.
type NodeTypeInfo struct {
	Type        string         `json:"node_type"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}
