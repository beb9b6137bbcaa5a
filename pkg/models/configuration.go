package models

import "time"

// Configuration is the type-specific payload of a node. The set of variants is closed.
type Configuration interface {
	NodeType() NodeType
	configuration()
}

// MessageStatus tracks the delivery state of a message node.
type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusOpened  MessageStatus = "opened"
)

// Valid reports whether s is a known message status.
func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusPending, MessageStatusSent, MessageStatusOpened:
		return true
	default:
		return false
	}
}

type StartConfiguration struct{}

func (StartConfiguration) NodeType() NodeType { return NodeTypeStart }
func (StartConfiguration) configuration()     {}

// MessageConfiguration holds the text sent by a message node and its optional status.
type MessageConfiguration struct {
	Text   string         `json:"text"`
	Status *MessageStatus `json:"status"`
}

func (MessageConfiguration) NodeType() NodeType { return NodeTypeMessage }
func (MessageConfiguration) configuration()     {}

// ConditionConfiguration holds the expression a condition node branches on.
type ConditionConfiguration struct {
	Condition string `json:"condition"`
}

func (ConditionConfiguration) NodeType() NodeType { return NodeTypeCondition }
func (ConditionConfiguration) configuration()     {}

type EndConfiguration struct{}

func (EndConfiguration) NodeType() NodeType { return NodeTypeEnd }
func (EndConfiguration) configuration()     {}

// ConfigurationRecord is the stored form of a Configuration: one row per node, discriminated
// by NodeType, with the variant columns left nil when they do not apply.
type ConfigurationRecord struct {
	ID        string         `json:"id"`
	NodeID    string         `json:"node_id"`
	NodeType  NodeType       `json:"node_type"`
	Text      *string        `json:"text,omitempty"`
	Status    *MessageStatus `json:"status,omitempty"`
	Condition *string        `json:"condition,omitempty"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
