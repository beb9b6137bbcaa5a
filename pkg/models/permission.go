package models

import (
	"fmt"
	"time"
)

// PermissionType is the kind of right a grant confers on a workflow.
type PermissionType string

const (
	PermissionView   PermissionType = "view"
	PermissionEdit   PermissionType = "edit"
	PermissionDelete PermissionType = "delete"
)

// PermissionTypes lists every permission type a grant may carry.
var PermissionTypes = []PermissionType{PermissionView, PermissionEdit, PermissionDelete}

// Valid reports whether t is a known permission type.
func (t PermissionType) Valid() bool {
	switch t {
	case PermissionView, PermissionEdit, PermissionDelete:
		return true
	default:
		return false
	}
}

// ParsePermissionType converts a raw string into a PermissionType.
func ParsePermissionType(raw string) (PermissionType, error) {
	permissionType := PermissionType(raw)
	if !permissionType.Valid() {
		return "", fmt.Errorf("unknown permission type %q", raw)
	}

	return permissionType, nil
}

// Permission grants a user one right on a workflow. A (user, workflow, type) triple is unique.
type Permission struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	WorkflowID string         `json:"workflow_id"`
	Type       PermissionType `json:"permission_type"`
	CreatedBy  string         `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
