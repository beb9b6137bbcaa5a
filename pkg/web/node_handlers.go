package web

import (
	"strconv"

	"github.com/dukex/workflows-api/pkg/nodes"
	"github.com/dukex/workflows-api/pkg/services"
	"github.com/gofiber/fiber/v3"
)

// decodeObject reads a free-form JSON object body. Node payloads are validated against
// the node type's schema, not a struct.
func decodeObject(c fiber.Ctx) (map[string]any, bool) {
	var body map[string]any

	if err := c.App().Config().JSONDecoder(c.Body(), &body); err != nil || body == nil {
		return nil, false
	}

	return body, true
}

// GetNodeTypes lists the node types with the schema their configuration must satisfy.
func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := nodes.Types()
	infos := make([]NodeTypeInfo, 0, len(types))

	for _, nodeType := range types {
		binding, err := nodes.Lookup(nodeType)
		if err != nil {
			return internalError(c, err)
		}

		infos = append(infos, NodeTypeInfo{
			Type:        string(nodeType),
			Description: binding.Description,
			Schema:      binding.Schema(),
		})
	}

	return c.JSON(fiber.Map{"node_types": infos})
}

func (h *APIHandlers) GetWorkflowNodes(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	opts := services.ListNodesOptions{}

	if raw := c.Query("include_configuration"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return validationError(c, "Invalid query parameters: "+err.Error())
		}

		opts.IncludeConfiguration = include
	}

	views, err := h.nodes.List(c.Context(), CurrentUser(c), workflowID, opts)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"nodes": views})
}

func (h *APIHandlers) CreateWorkflowNode(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	body, ok := decodeObject(c)
	if !ok {
		return validationError(c, errInvalidJSON.Error())
	}

	nodeType, ok := body["node_type"].(string)
	if !ok || nodeType == "" {
		return validationError(c, "node_type is required")
	}

	view, err := h.nodes.Create(c.Context(), CurrentUser(c), workflowID, nodeType, body)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *APIHandlers) GetWorkflowNode(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	nodeID, ok := h.pathID(c, "nodeId")
	if !ok {
		return invalidID(c, "node id")
	}

	view, err := h.nodes.Get(c.Context(), CurrentUser(c), workflowID, nodeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) UpdateWorkflowNode(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	nodeID, ok := h.pathID(c, "nodeId")
	if !ok {
		return invalidID(c, "node id")
	}

	patch, ok := decodeObject(c)
	if !ok {
		return validationError(c, errInvalidJSON.Error())
	}

	view, err := h.nodes.Update(c.Context(), CurrentUser(c), workflowID, nodeID, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) DeleteWorkflowNode(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	nodeID, ok := h.pathID(c, "nodeId")
	if !ok {
		return invalidID(c, "node id")
	}

	err := h.nodes.Delete(c.Context(), CurrentUser(c), workflowID, nodeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
