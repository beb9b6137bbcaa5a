package models

import "time"

// EdgeWeight labels the branch an edge represents.
type EdgeWeight int

const (
	EdgeWeightNo   EdgeWeight = -1
	EdgeWeightZero EdgeWeight = 0
	EdgeWeightYes  EdgeWeight = 1
)

// Valid reports whether w is one of -1, 0 or 1.
func (w EdgeWeight) Valid() bool {
	return w >= EdgeWeightNo && w <= EdgeWeightYes
}

// Edge connects two nodes of the same workflow. The ordered (source, target) pair is unique.
type Edge struct {
	ID           string     `json:"id"`
	WorkflowID   string     `json:"workflow_id"`
	SourceNodeID string     `json:"source_node_id"`
	TargetNodeID string     `json:"target_node_id"`
	Status       EdgeWeight `json:"status"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
