// Package services implements the business operations of the API on top of persistence.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/workflows-api/pkg/auth"
	"github.com/dukex/workflows-api/pkg/nodes"
	"github.com/dukex/workflows-api/pkg/persistence"
)

var (
	// Validation errors (422).
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidEdge       = errors.New("invalid edge")
	ErrNodeTypeImmutable = errors.New("node type cannot be changed")

	// Authentication errors.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrInvalidCredentials     = errors.New("invalid email or password")

	// ErrForbidden is returned when a caller can see a workflow but may not manage it.
	ErrForbidden = errors.New("forbidden")

	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	if err == nil {
		err = ErrInvalidRequest
	}

	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports errors caused by a malformed or semantically invalid request.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidEdge) ||
		errors.Is(err, ErrNodeTypeImmutable) ||
		errors.Is(err, nodes.ErrUnknownNodeType) ||
		errors.Is(err, nodes.ErrInvalidConfiguration)
}

// IsAuthenticationRequired reports a request that carried no usable credential.
func IsAuthenticationRequired(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired)
}

// IsAuthenticationFailed reports a credential that was presented but rejected.
func IsAuthenticationFailed(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrTokenExpired)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsNotFound reports a missing or invisible resource.
func IsNotFound(err error) bool {
	return persistence.IsNotFound(err)
}

// IsConflictError reports a uniqueness violation.
func IsConflictError(err error) bool {
	return persistence.IsConflict(err)
}
