package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow does not exist or is not visible through the filter.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrNodeNotFound indicates a node does not exist in the given workflow.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConfigurationExists indicates a node already has a configuration.
	ErrConfigurationExists = errors.New("node configuration already exists")

	// ErrEdgeNotFound indicates an edge does not exist in the given workflow.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrEdgeAlreadyExists indicates an edge between the same source and target already exists.
	ErrEdgeAlreadyExists = errors.New("edge already exists")

	// ErrUserNotFound indicates a user was not found by id or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates the email is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrPermissionNotFound indicates the grant being revoked does not exist.
	ErrPermissionNotFound = errors.New("permission not found")

	// ErrPermissionAlreadyExists indicates the user already holds that grant on the workflow.
	ErrPermissionAlreadyExists = errors.New("permission already exists")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "Get", "Update", "Delete")
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// NodeError wraps node-related errors with additional context.
type NodeError struct {
	Op         string
	WorkflowID string
	NodeID     string
	Err        error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s operation failed for node %s in workflow %s: %v", e.Op, e.NodeID, e.WorkflowID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func (e *NodeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewNodeError creates a new node error with context.
func NewNodeError(op, workflowID, nodeID string, err error) *NodeError {
	return &NodeError{
		Op:         op,
		WorkflowID: workflowID,
		NodeID:     nodeID,
		Err:        err,
	}
}

// EdgeError wraps edge-related errors with additional context.
type EdgeError struct {
	Op         string
	WorkflowID string
	EdgeID     string
	Err        error
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("%s operation failed for edge %s in workflow %s: %v", e.Op, e.EdgeID, e.WorkflowID, e.Err)
}

func (e *EdgeError) Unwrap() error {
	return e.Err
}

func (e *EdgeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewEdgeError creates a new edge error with context.
func NewEdgeError(op, workflowID, edgeID string, err error) *EdgeError {
	return &EdgeError{
		Op:         op,
		WorkflowID: workflowID,
		EdgeID:     edgeID,
		Err:        err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsNodeNotFound checks if an error indicates a node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrEdgeNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrPermissionNotFound)
}

// IsConflict checks if an error indicates a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrUserAlreadyExists) ||
		errors.Is(err, ErrPermissionAlreadyExists) ||
		errors.Is(err, ErrEdgeAlreadyExists) ||
		errors.Is(err, ErrConfigurationExists)
}
