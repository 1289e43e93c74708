package service

import (
	"context"
	"strings"

	"murmur/internal/models"
	"murmur/internal/repository"
)

const maxCommentLen = 2000

// CommentService provides comment business logic.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService returns a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// Add creates a comment on a post the viewer can see.
func (s *CommentService) Add(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Content too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && post.UserID != userID {
		return nil, models.NewNotFoundError("Post", postID)
	}

	comment := &models.Comment{
		Content: content,
		UserID:  userID,
		PostID:  postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListByPost returns a page of comments in insertion order.
func (s *CommentService) ListByPost(ctx context.Context, userID, postID uint, limit, offset int) ([]*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && post.UserID != userID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

// Delete removes a comment. Allowed for the comment's author and for the
// owner of the post it sits on.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return models.NewForbiddenError("You can only delete your own comments or comments on your posts")
		}
	}

	return s.commentRepo.Delete(ctx, commentID)
}
