package file

import (
	"context"
	"fmt"
	"slices"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/nodes"
	"github.com/dukex/workflows-api/pkg/persistence"
)

type nodeRepository struct {
	store *store
}

func (r *nodeRepository) Create(_ context.Context, workflowID string, cfg models.Configuration, userID string) (*models.Node, error) {
	binding, err := nodes.For(cfg)
	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, "", err)
	}

	workflows := &workflowRepository{store: r.store}
	if !workflows.exists(workflowID) {
		return nil, persistence.NewWorkflowError("CreateNode", workflowID, persistence.ErrWorkflowNotFound)
	}

	nodeID, err := newID()
	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, "", err)
	}

	configurationID, err := newID()
	if err != nil {
		return nil, persistence.NewNodeError("Create", workflowID, nodeID, err)
	}

	if r.configurationIndex(nodeID) >= 0 {
		return nil, persistence.NewNodeError("Create", workflowID, nodeID, persistence.ErrConfigurationExists)
	}

	now := r.store.now()
	node := &models.Node{
		ID:         nodeID,
		WorkflowID: workflowID,
		Type:       binding.Type,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	record := binding.Record(cfg)
	record.ID = configurationID
	record.NodeID = nodeID
	record.CreatedBy = userID
	record.CreatedAt = now
	record.UpdatedAt = now

	stored := *node
	r.store.doc.Nodes = append(r.store.doc.Nodes, &stored)
	r.store.doc.Configurations = append(r.store.doc.Configurations, record)

	node.Config = cfg

	return node, nil
}

func (r *nodeRepository) Get(_ context.Context, workflowID, nodeID string) (*models.Node, error) {
	i := r.nodeIndex(workflowID, nodeID)
	if i < 0 {
		return nil, persistence.NewNodeError("Get", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	return r.withConfiguration(r.store.doc.Nodes[i])
}

func (r *nodeRepository) List(_ context.Context, workflowID string) ([]*models.Node, error) {
	result := make([]*models.Node, 0)

	for _, node := range r.store.doc.Nodes {
		if node.WorkflowID == workflowID {
			copied := *node
			result = append(result, &copied)
		}
	}

	return result, nil
}

func (r *nodeRepository) Update(_ context.Context, workflowID, nodeID string, patch map[string]any) (*models.Node, error) {
	i := r.nodeIndex(workflowID, nodeID)
	if i < 0 {
		return nil, persistence.NewNodeError("Update", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	stored := r.store.doc.Nodes[i]

	current, err := r.withConfiguration(stored)
	if err != nil {
		return nil, err
	}

	binding, err := nodes.Lookup(stored.Type)
	if err != nil {
		return nil, persistence.NewNodeError("Update", workflowID, nodeID, err)
	}

	cfg, err := binding.Patch(current.Config, patch)
	if err != nil {
		return nil, persistence.NewNodeError("Update", workflowID, nodeID, err)
	}

	now := r.store.now()
	record := r.store.doc.Configurations[r.configurationIndex(nodeID)]
	updated := binding.Record(cfg)
	record.Text = updated.Text
	record.Status = updated.Status
	record.Condition = updated.Condition
	record.UpdatedAt = now
	stored.UpdatedAt = now

	node := *stored
	node.Config = cfg

	return &node, nil
}

// Delete removes the node, its configuration and every edge touching it.
func (r *nodeRepository) Delete(_ context.Context, workflowID, nodeID string) error {
	i := r.nodeIndex(workflowID, nodeID)
	if i < 0 {
		return persistence.NewNodeError("Delete", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	doc := r.store.doc
	doc.Nodes = slices.Delete(doc.Nodes, i, i+1)
	doc.Configurations = slices.DeleteFunc(doc.Configurations, func(c *models.ConfigurationRecord) bool {
		return c.NodeID == nodeID
	})
	doc.Edges = slices.DeleteFunc(doc.Edges, func(e *models.Edge) bool {
		return e.SourceNodeID == nodeID || e.TargetNodeID == nodeID
	})

	return nil
}

func (r *nodeRepository) withConfiguration(stored *models.Node) (*models.Node, error) {
	i := r.configurationIndex(stored.ID)
	if i < 0 {
		return nil, persistence.NewNodeError("Get", stored.WorkflowID, stored.ID, fmt.Errorf("configuration missing"))
	}

	binding, err := nodes.Lookup(stored.Type)
	if err != nil {
		return nil, persistence.NewNodeError("Get", stored.WorkflowID, stored.ID, err)
	}

	cfg, err := binding.FromRecord(r.store.doc.Configurations[i])
	if err != nil {
		return nil, persistence.NewNodeError("Get", stored.WorkflowID, stored.ID, err)
	}

	node := *stored
	node.Config = cfg

	return &node, nil
}

func (r *nodeRepository) nodeIndex(workflowID, nodeID string) int {
	return slices.IndexFunc(r.store.doc.Nodes, func(n *models.Node) bool {
		return n.ID == nodeID && n.WorkflowID == workflowID
	})
}

func (r *nodeRepository) configurationIndex(nodeID string) int {
	return slices.IndexFunc(r.store.doc.Configurations, func(c *models.ConfigurationRecord) bool {
		return c.NodeID == nodeID
	})
}
