// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Add(c.Context(), currentUserID(c), postID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/posts/:id/comments, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	comments, err := s.commentService.ListByPost(c.Context(), currentUserID(c), postID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if _, err := s.parseID(c, "id"); err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.Delete(c.Context(), currentUserID(c), commentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
