package file

import (
	"context"
	"slices"

	"github.com/dukex/workflows-api/pkg/access"
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
)

// workflowRepository evaluates access filters in memory.
type workflowRepository struct {
	store *store
}

func (r *workflowRepository) find(filter access.Filter, id string) (*models.Workflow, bool) {
	for _, workflow := range r.store.doc.Workflows {
		if workflow.ID == id && filter.Matches(workflow) {
			return workflow, true
		}
	}

	return nil, false
}

func (r *workflowRepository) Get(_ context.Context, filter access.Filter, id string) (*models.Workflow, error) {
	workflow, ok := r.find(filter, id)
	if !ok {
		return nil, persistence.NewWorkflowError("Get", id, persistence.ErrWorkflowNotFound)
	}

	return copyWorkflow(workflow), nil
}

func (r *workflowRepository) List(_ context.Context, filter access.Filter) ([]*models.Workflow, error) {
	workflows := make([]*models.Workflow, 0)

	for _, workflow := range r.store.doc.Workflows {
		if filter.Matches(workflow) {
			workflows = append(workflows, copyWorkflow(workflow))
		}
	}

	return workflows, nil
}

func (r *workflowRepository) Create(_ context.Context, workflow *models.Workflow) error {
	id, err := newID()
	if err != nil {
		return persistence.NewWorkflowError("Create", "", err)
	}

	now := r.store.now()
	workflow.ID = id
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	r.store.doc.Workflows = append(r.store.doc.Workflows, copyWorkflow(workflow))

	return nil
}

func (r *workflowRepository) Update(_ context.Context, filter access.Filter, id string, patch models.WorkflowPatch) (*models.Workflow, error) {
	workflow, ok := r.find(filter, id)
	if !ok {
		return nil, persistence.NewWorkflowError("Update", id, persistence.ErrWorkflowNotFound)
	}

	patch.Apply(workflow)
	workflow.UpdatedAt = r.store.now()

	return copyWorkflow(workflow), nil
}

// Delete removes the workflow and everything that belongs to it.
func (r *workflowRepository) Delete(_ context.Context, filter access.Filter, id string) error {
	if _, ok := r.find(filter, id); !ok {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	doc := r.store.doc

	nodeIDs := make(map[string]struct{})
	for _, node := range doc.Nodes {
		if node.WorkflowID == id {
			nodeIDs[node.ID] = struct{}{}
		}
	}

	doc.Workflows = slices.DeleteFunc(doc.Workflows, func(w *models.Workflow) bool { return w.ID == id })
	doc.Permissions = slices.DeleteFunc(doc.Permissions, func(p *models.Permission) bool { return p.WorkflowID == id })
	doc.Edges = slices.DeleteFunc(doc.Edges, func(e *models.Edge) bool { return e.WorkflowID == id })
	doc.Nodes = slices.DeleteFunc(doc.Nodes, func(n *models.Node) bool { return n.WorkflowID == id })
	doc.Configurations = slices.DeleteFunc(doc.Configurations, func(c *models.ConfigurationRecord) bool {
		_, ok := nodeIDs[c.NodeID]

		return ok
	})

	return nil
}

func (r *workflowRepository) exists(id string) bool {
	return slices.ContainsFunc(r.store.doc.Workflows, func(w *models.Workflow) bool { return w.ID == id })
}

func copyWorkflow(workflow *models.Workflow) *models.Workflow {
	copied := *workflow
	if workflow.Description != nil {
		description := *workflow.Description
		copied.Description = &description
	}

	return &copied
}
