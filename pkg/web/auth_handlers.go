package web

import (
	"github.com/dukex/workflows-api/pkg/models"
	"github.com/gofiber/fiber/v3"
)

type userLocalsKey struct{}

// RequireUser resolves the bearer token into a user and stores it in the request locals.
func (h *APIHandlers) RequireUser(c fiber.Ctx) error {
	user, err := h.auth.CurrentUser(c.Context(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Locals(userLocalsKey{}, user)

	return c.Next()
}

// CurrentUser returns the user stored by RequireUser, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey{}).(*models.User)

	return user
}

func (h *APIHandlers) Register(c fiber.Ctx) error {
	var req RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	user, err := h.auth.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{ID: user.ID, Email: user.Email})
}

func (h *APIHandlers) Login(c fiber.Ctx) error {
	var req LoginRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	tokens, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tokens)
}

func (h *APIHandlers) Refresh(c fiber.Ctx) error {
	var req RefreshRequest
	if err := h.bind(c, &req); err != nil {
		return validationError(c, err.Error())
	}

	tokens, err := h.auth.Refresh(c.Context(), req.Refresh)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tokens)
}
