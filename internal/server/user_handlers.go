// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"strings"

	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers handles GET /api/users with optional username, first_name and
// last_name substring filters.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c)

	filters := repository.UserSearchFilters{
		Username:  strings.TrimSpace(c.Query("username")),
		FirstName: strings.TrimSpace(c.Query("first_name")),
		LastName:  strings.TrimSpace(c.Query("last_name")),
	}

	users, err := s.userService.List(c.Context(), filters, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.Profile(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.Profile(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username  *string `json:"username"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Bio       *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), currentUserID(c), service.UpdateProfileInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UploadMyPicture handles POST /api/users/me/picture (multipart form,
// field "picture").
func (s *Server) UploadMyPicture(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A picture file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer file.Close()

	user, err := s.userService.SetPicture(c.Context(), currentUserID(c), fileHeader.Filename, file)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	users, err := s.followService.Followers(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	users, err := s.followService.Following(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// ToggleFollow handles POST /api/users/:id/toggle-follow. A repeated call
// undoes the previous one.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.followService.Toggle(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"result": result,
	})
}

// GetUserPosts handles GET /api/users/:id/posts. Only published posts are
// listed unless the viewer is looking at their own page.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	publishedOnly := id != currentUserID(c)
	posts, err := s.postRepo.ListByUser(c.Context(), id, publishedOnly, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
