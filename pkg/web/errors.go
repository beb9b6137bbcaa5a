package web

import (
	"log/slog"

	"github.com/dukex/workflows-api/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

const problemContentType = "application/problem+json"

func problem(c fiber.Ctx, status int, problemType, detail string) error {
	p := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(status).JSON(p, problemContentType)
}

func validationError(c fiber.Ctx, detail string) error {
	return problem(c, fiber.StatusUnprocessableEntity, "validation_error", detail)
}

func internalError(c fiber.Ctx, err error) error {
	slog.ErrorContext(c.Context(), "request failed", "path", c.Path(), "method", c.Method(), "error", err)

	p := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error")

	return c.Status(fiber.StatusInternalServerError).JSON(p, problemContentType)
}

// handleServiceError translates service errors into problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsAuthenticationRequired(err):
		return problem(c, fiber.StatusForbidden, "authentication_required", "authentication credentials were not provided")

	case services.IsAuthenticationFailed(err):
		return problem(c, fiber.StatusUnauthorized, "authentication_failed", err.Error())

	case services.IsValidationError(err):
		return validationError(c, err.Error())

	case services.IsForbidden(err):
		return problem(c, fiber.StatusForbidden, "forbidden", "only the workflow owner can manage permissions")

	case services.IsNotFound(err):
		return problem(c, fiber.StatusNotFound, "not_found", err.Error())

	case services.IsConflictError(err):
		return problem(c, fiber.StatusConflict, "conflict", err.Error())

	default:
		return internalError(c, err)
	}
}
