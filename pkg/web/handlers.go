// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/dukex/workflows-api/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// Services groups the business services the handlers delegate to.
type Services struct {
	Auth        *services.Auth
	Workflows   *services.Workflow
	Nodes       *services.Node
	Edges       *services.Edge
	Permissions *services.Permission
}

var errInvalidJSON = errors.New("invalid JSON format")

type APIHandlers struct {
	auth        *services.Auth
	workflows   *services.Workflow
	nodes       *services.Node
	edges       *services.Edge
	permissions *services.Permission
	validator   *validator.Validate
}

func NewAPIHandlers(svc Services, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		auth:        svc.Auth,
		workflows:   svc.Workflows,
		nodes:       svc.Nodes,
		edges:       svc.Edges,
		permissions: svc.Permissions,
		validator:   validator,
	}
}

// Routes mounts every endpoint on the router. Workflow routes require an authenticated user.
func (h *APIHandlers) Routes(router fiber.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/node-types", h.GetNodeTypes)

	a := router.Group("/auth")
	a.Post("/register", h.Register)
	a.Post("/login", h.Login)
	a.Post("/refresh", h.Refresh)

	w := router.Group("/workflows", h.RequireUser)
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Patch("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)

	w.Get("/:id/nodes", h.GetWorkflowNodes)
	w.Post("/:id/nodes", h.CreateWorkflowNode)
	w.Get("/:id/nodes/:nodeId", h.GetWorkflowNode)
	w.Patch("/:id/nodes/:nodeId", h.UpdateWorkflowNode)
	w.Delete("/:id/nodes/:nodeId", h.DeleteWorkflowNode)

	w.Get("/:id/edges", h.GetWorkflowEdges)
	w.Post("/:id/edges", h.CreateWorkflowEdge)
	w.Get("/:id/edges/:edgeId", h.GetWorkflowEdge)
	w.Patch("/:id/edges/:edgeId", h.UpdateWorkflowEdge)
	w.Delete("/:id/edges/:edgeId", h.DeleteWorkflowEdge)

	w.Get("/:id/permissions", h.GetWorkflowPermissions)
	w.Post("/:id/permissions", h.GrantWorkflowPermission)
	w.Delete("/:id/permissions/:userId/:type", h.RevokeWorkflowPermission)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.workflows.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Workflows API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Workflows API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Ready reports whether the persistence layer answers; it backs the readiness probe.
func (h *APIHandlers) Ready(c fiber.Ctx) bool {
	_, ok := h.workflows.HealthCheck(c.Context())

	return ok
}

// bind decodes the JSON body into req and validates it. The returned error is meant for
// the client.
func (h *APIHandlers) bind(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return errInvalidJSON
	}

	return h.validator.Struct(req)
}

// pathID returns the named path parameter when it is a well formed UUID.
func (h *APIHandlers) pathID(c fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)

	return id, h.validator.Var(id, "required,uuid") == nil
}

func invalidID(c fiber.Ctx, name string) error {
	return validationError(c, "Invalid "+name+": must be a UUID")
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflows.List(c.Context(), CurrentUser(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	workflow, err := h.workflows.FetchByID(c.Context(), CurrentUser(c), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	created, err := h.workflows.Create(c.Context(), CurrentUser(c), req.Name, req.Description)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	var req UpdateWorkflowRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	updated, err := h.workflows.Update(c.Context(), CurrentUser(c), id, req.Patch())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id, ok := h.pathID(c, "id")
	if !ok {
		return invalidID(c, "workflow id")
	}

	err := h.workflows.Delete(c.Context(), CurrentUser(c), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
