// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"time"

	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. A future scheduled_time defers
// publication to the background worker; anything else publishes immediately.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Text          string     `json:"text"`
		Hashtag       string     `json:"hashtag"`
		MediaURL      string     `json:"media_url"`
		ScheduledTime *time.Time `json:"scheduled_time"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:        userID,
		Text:          req.Text,
		Hashtag:       req.Hashtag,
		MediaURL:      req.MediaURL,
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed handles GET /api/posts?hashtag=...: the viewer's feed of published
// posts by themselves and the users they follow, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c)

	posts, err := s.feedService.ListFeed(c.Context(), currentUserID(c), c.Query("hashtag"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetLikedPosts handles GET /api/posts/liked
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	page := parsePagination(c)

	posts, err := s.feedService.ListLiked(c.Context(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.feedService.GetPost(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text     string `json:"text"`
		Hashtag  string `json:"hashtag"`
		MediaURL string `json:"media_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   id,
		Text:     req.Text,
		Hashtag:  req.Hashtag,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TogglePostLike handles POST /api/posts/:id/toggle-like
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"result": result,
	})
}

// GetPostLikes handles GET /api/posts/:id/likes
func (s *Server) GetPostLikes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	likes, err := s.feedService.ListLikes(c.Context(), currentUserID(c), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likes)
}

// UploadPostMedia handles POST /api/posts/:id/media (multipart form, field
// "media"). The stored URI is recorded on the post. Owner only.
func (s *Server) UploadPostMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	fileHeader, err := c.FormFile("media")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A media file is required"))
	}

	userID := currentUserID(c)
	post, err := s.feedService.GetPost(c.Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	if post.UserID != userID {
		return respondError(c, models.NewForbiddenError("You can only attach media to your own posts"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer file.Close()

	uri, err := s.mediaStore.SavePostMedia(fileHeader.Filename, post.Hashtag, file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	updated, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:   userID,
		PostID:   id,
		MediaURL: uri,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}
