package file

import (
	"context"
	"slices"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
)

type edgeRepository struct {
	store *store
}

func (r *edgeRepository) Create(_ context.Context, edge *models.Edge) error {
	duplicate := slices.ContainsFunc(r.store.doc.Edges, func(e *models.Edge) bool {
		return e.SourceNodeID == edge.SourceNodeID && e.TargetNodeID == edge.TargetNodeID
	})
	if duplicate {
		return persistence.NewEdgeError("Create", edge.WorkflowID, "", persistence.ErrEdgeAlreadyExists)
	}

	id, err := newID()
	if err != nil {
		return persistence.NewEdgeError("Create", edge.WorkflowID, "", err)
	}

	now := r.store.now()
	edge.ID = id
	edge.CreatedAt = now
	edge.UpdatedAt = now

	copied := *edge
	r.store.doc.Edges = append(r.store.doc.Edges, &copied)

	return nil
}

func (r *edgeRepository) Get(_ context.Context, workflowID, edgeID string) (*models.Edge, error) {
	i := r.index(workflowID, edgeID)
	if i < 0 {
		return nil, persistence.NewEdgeError("Get", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	copied := *r.store.doc.Edges[i]

	return &copied, nil
}

func (r *edgeRepository) List(_ context.Context, workflowID string) ([]*models.Edge, error) {
	edges := make([]*models.Edge, 0)

	for _, edge := range r.store.doc.Edges {
		if edge.WorkflowID == workflowID {
			copied := *edge
			edges = append(edges, &copied)
		}
	}

	return edges, nil
}

func (r *edgeRepository) Update(_ context.Context, workflowID, edgeID string, status models.EdgeWeight) (*models.Edge, error) {
	i := r.index(workflowID, edgeID)
	if i < 0 {
		return nil, persistence.NewEdgeError("Update", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	edge := r.store.doc.Edges[i]
	edge.Status = status
	edge.UpdatedAt = r.store.now()

	copied := *edge

	return &copied, nil
}

func (r *edgeRepository) Delete(_ context.Context, workflowID, edgeID string) error {
	i := r.index(workflowID, edgeID)
	if i < 0 {
		return persistence.NewEdgeError("Delete", workflowID, edgeID, persistence.ErrEdgeNotFound)
	}

	r.store.doc.Edges = slices.Delete(r.store.doc.Edges, i, i+1)

	return nil
}

func (r *edgeRepository) index(workflowID, edgeID string) int {
	return slices.IndexFunc(r.store.doc.Edges, func(e *models.Edge) bool {
		return e.ID == edgeID && e.WorkflowID == workflowID
	})
}
