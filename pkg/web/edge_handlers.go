package web

import (
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetWorkflowEdges(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	edges, err := h.edges.List(c.Context(), CurrentUser(c), workflowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"edges": edges})
}

func (h *APIHandlers) CreateWorkflowEdge(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	var req CreateEdgeRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	status := models.EdgeWeightZero
	if req.Status != nil {
		status = models.EdgeWeight(*req.Status)
	}

	edge, err := h.edges.Create(c.Context(), CurrentUser(c), workflowID, services.CreateEdgeRequest{
		SourceNodeID: req.SourceNodeID,
		TargetNodeID: req.TargetNodeID,
		Status:       status,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (h *APIHandlers) GetWorkflowEdge(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	edgeID, ok := h.pathID(c, "edgeId")
	if !ok {
		return invalidID(c, "edge id")
	}

	edge, err := h.edges.Get(c.Context(), CurrentUser(c), workflowID, edgeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(edge)
}

func (h *APIHandlers) UpdateWorkflowEdge(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	edgeID, ok := h.pathID(c, "edgeId")
	if !ok {
		return invalidID(c, "edge id")
	}

	var req UpdateEdgeRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	edge, err := h.edges.Update(c.Context(), CurrentUser(c), workflowID, edgeID, models.EdgeWeight(*req.Status))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(edge)
}

func (h *APIHandlers) DeleteWorkflowEdge(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	edgeID, ok := h.pathID(c, "edgeId")
	if !ok {
		return invalidID(c, "edge id")
	}

	err := h.edges.Delete(c.Context(), CurrentUser(c), workflowID, edgeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
