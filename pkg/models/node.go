package models

import (
	"fmt"
	"time"
)

// NodeType tags a node with the variant of configuration it carries.
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeMessage   NodeType = "message"
	NodeTypeCondition NodeType = "condition"
	NodeTypeEnd       NodeType = "end"
)

// NodeTypes lists the closed set of node types.
var NodeTypes = []NodeType{NodeTypeStart, NodeTypeMessage, NodeTypeCondition, NodeTypeEnd}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeStart, NodeTypeMessage, NodeTypeCondition, NodeTypeEnd:
		return true
	default:
		return false
	}
}

// ParseNodeType converts a raw string into a NodeType.
func ParseNodeType(raw string) (NodeType, error) {
	nodeType := NodeType(raw)
	if !nodeType.Valid() {
		return "", fmt.Errorf("unknown node type %q", raw)
	}

	return nodeType, nil
}

// Node is a step of a workflow. Its type never changes after creation and it owns exactly
// one Configuration whose variant matches the type.
type Node struct {
	ID         string        `json:"id"`
	WorkflowID string        `json:"workflow_id"`
	Type       NodeType      `json:"node_type"`
	Config     Configuration `json:"-"`
	CreatedBy  string        `json:"created_by"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
