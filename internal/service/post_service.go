package service

import (
	"context"
	"log/slog"
	"time"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/scheduler"
)

const (
	maxTextLen    = 10000
	maxHashtagLen = 255
)

// PostService provides post lifecycle business logic: creation with optional
// deferred publication, owner-only mutation, and like toggling.
type PostService struct {
	postRepo repository.PostRepository
	queue    scheduler.Queue

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

type CreatePostInput struct {
	UserID        uint
	Text          string
	Hashtag       string
	MediaURL      string
	ScheduledTime *time.Time
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Text     string
	Hashtag  string
	MediaURL string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, queue scheduler.Queue) *PostService {
	return &PostService{
		postRepo: postRepo,
		queue:    queue,
		now:      time.Now,
	}
}

// SetNow overrides the service clock. Tests only.
func (s *PostService) SetNow(now func() time.Time) {
	s.now = now
}

// CreatePost validates and stores a new post. Without a scheduled time (or
// with one that already passed) the post is published immediately; a future
// scheduled time leaves it unpublished and enqueues a one-shot publication
// job due at that instant.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Text == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Text) > maxTextLen {
		return nil, models.NewValidationError("Text too long (max 10000 characters)")
	}
	if len(in.Hashtag) > maxHashtagLen {
		return nil, models.NewValidationError("Hashtag too long (max 255 characters)")
	}

	post := &models.Post{
		Text:          in.Text,
		Hashtag:       in.Hashtag,
		MediaURL:      in.MediaURL,
		UserID:        in.UserID,
		ScheduledTime: in.ScheduledTime,
	}

	deferred := in.ScheduledTime != nil && in.ScheduledTime.After(s.now())
	post.IsPublished = !deferred

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if deferred {
		job := scheduler.Job{Kind: scheduler.KindPublishPost, PostID: post.ID}
		if err := s.queue.Enqueue(ctx, job, *in.ScheduledTime); err != nil {
			return nil, models.NewInternalError(err)
		}
		middleware.Logger.InfoContext(ctx, "post publication scheduled",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.Time("scheduled_time", *in.ScheduledTime),
		)
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// UpdatePost applies owner-only edits to text, hashtag, and media.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Text != "" {
		if len(in.Text) > maxTextLen {
			return nil, models.NewValidationError("Text too long (max 10000 characters)")
		}
		post.Text = in.Text
	}
	if in.Hashtag != "" {
		if len(in.Hashtag) > maxHashtagLen {
			return nil, models.NewValidationError("Hashtag too long (max 255 characters)")
		}
		post.Hashtag = in.Hashtag
	}
	if in.MediaURL != "" {
		post.MediaURL = in.MediaURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID)
}

// DeletePost removes a post and its comments and likes. Owner only.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike flips the viewer's like on a post. The post must be visible to
// the viewer; self-like is permitted.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (repository.ToggleResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}
	if !post.IsPublished && post.UserID != userID {
		return "", models.NewNotFoundError("Post", postID)
	}
	return s.postRepo.ToggleLike(ctx, userID, postID)
}

// PublishScheduled is the worker handler for publication jobs. A post deleted
// between scheduling and firing is a silent skip, not an error.
func (s *PostService) PublishScheduled(ctx context.Context, job scheduler.Job) error {
	published, err := s.postRepo.Publish(ctx, job.PostID)
	if err != nil {
		return err
	}
	if !published {
		middleware.ScheduledJobs.WithLabelValues("missing").Inc()
		middleware.Logger.InfoContext(ctx, "scheduled post no longer exists, skipping",
			slog.Uint64("post_id", uint64(job.PostID)),
		)
		return nil
	}
	middleware.ScheduledJobs.WithLabelValues("published").Inc()
	middleware.Logger.InfoContext(ctx, "scheduled post published",
		slog.Uint64("post_id", uint64(job.PostID)),
	)
	return nil
}
