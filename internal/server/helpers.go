// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"errors"

	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/page_size query parameters, converted to
// limit/offset for the repositories.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// parsePagination extracts page and page_size query parameters. Pages are
// 1-based; out-of-range values fall back to defaults rather than erroring.
func parsePagination(c *fiber.Ctx) Pagination {
	size := c.QueryInt("page_size", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	return Pagination{
		Limit:  size,
		Offset: (page - 1) * size,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	switch param {
	case "id":
		return "ID"
	case "userId":
		return "user ID"
	case "commentId":
		return "comment ID"
	}
	return param
}

// respondError maps an application error to its HTTP status and writes the
// standard error envelope.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, appErr.HTTPStatus(), appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// currentUserID reads the authenticated user ID placed in locals by the auth
// middleware.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}
