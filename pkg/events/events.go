// Package events defines the domain events published when workflow definitions change.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every domain event.
const Topic = "workflows.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent EventType = "workflow.created"
	WorkflowUpdatedEvent EventType = "workflow.updated"
	WorkflowDeletedEvent EventType = "workflow.deleted"

	NodeCreatedEvent EventType = "node.created"
	NodeUpdatedEvent EventType = "node.updated"
	NodeDeletedEvent EventType = "node.deleted"

	EdgeCreatedEvent EventType = "edge.created"
	EdgeUpdatedEvent EventType = "edge.updated"
	EdgeDeletedEvent EventType = "edge.deleted"

	PermissionGrantedEvent EventType = "permission.granted"
	PermissionRevokedEvent EventType = "permission.revoked"
)

// EventTypes lists every event type this package defines.
var EventTypes = []EventType{
	WorkflowCreatedEvent, WorkflowUpdatedEvent, WorkflowDeletedEvent,
	NodeCreatedEvent, NodeUpdatedEvent, NodeDeletedEvent,
	EdgeCreatedEvent, EdgeUpdatedEvent, EdgeDeletedEvent,
	PermissionGrantedEvent, PermissionRevokedEvent,
}

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	ActorID    string    `json:"actor_id"`
}

// NewBaseEvent stamps a new event of the given type.
func NewBaseEvent(eventType EventType, workflowID, actorID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		ActorID:    actorID,
	}
}

type WorkflowCreated struct {
	BaseEvent

	Name string `json:"name"`
}

func (e WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowUpdated struct {
	BaseEvent

	Name string `json:"name"`
}

func (e WorkflowUpdated) GetType() EventType {
	return WorkflowUpdatedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (e WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

type NodeCreated struct {
	BaseEvent

	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

func (e NodeCreated) GetType() EventType {
	return NodeCreatedEvent
}

type NodeUpdated struct {
	BaseEvent

	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

func (e NodeUpdated) GetType() EventType {
	return NodeUpdatedEvent
}

type NodeDeleted struct {
	BaseEvent

	NodeID string `json:"node_id"`
}

func (e NodeDeleted) GetType() EventType {
	return NodeDeletedEvent
}

type EdgeCreated struct {
	BaseEvent

	EdgeID       string `json:"edge_id"`
	SourceNodeID string `json:"source_node_id"`
	TargetNodeID string `json:"target_node_id"`
	Status       int    `json:"status"`
}

func (e EdgeCreated) GetType() EventType {
	return EdgeCreatedEvent
}

type EdgeUpdated struct {
	BaseEvent

	EdgeID string `json:"edge_id"`
	Status int    `json:"status"`
}

func (e EdgeUpdated) GetType() EventType {
	return EdgeUpdatedEvent
}

type EdgeDeleted struct {
	BaseEvent

	EdgeID string `json:"edge_id"`
}

func (e EdgeDeleted) GetType() EventType {
	return EdgeDeletedEvent
}

type PermissionGranted struct {
	BaseEvent

	UserID         string `json:"user_id"`
	PermissionType string `json:"permission_type"`
}

func (e PermissionGranted) GetType() EventType {
	return PermissionGrantedEvent
}

type PermissionRevoked struct {
	BaseEvent

	UserID         string `json:"user_id"`
	PermissionType string `json:"permission_type"`
}

func (e PermissionRevoked) GetType() EventType {
	return PermissionRevokedEvent
}
