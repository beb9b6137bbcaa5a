package web

import (
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetWorkflowPermissions(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	grants, err := h.permissions.List(c.Context(), CurrentUser(c), workflowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"permissions": grants})
}

func (h *APIHandlers) GrantWorkflowPermission(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	var req GrantPermissionRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	grant, err := h.permissions.Grant(c.Context(), CurrentUser(c), workflowID, req.UserID, models.PermissionType(req.PermissionType))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(grant)
}

func (h *APIHandlers) RevokeWorkflowPermission(c fiber.Ctx) error {
	workflowID, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	userID, ok := h.pathID(c, "userId")
	if !ok {
		return invalidID(c, "user id")
	}

	permissionType, err := models.ParsePermissionType(c.Params("type"))
	if err != nil {
		return validationError(c, err.Error())
	}

	err = h.permissions.Revoke(c.Context(), CurrentUser(c), workflowID, userID, permissionType)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
