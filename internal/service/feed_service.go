package service

import (
	"context"
	"strings"

	"murmur/internal/cache"
	"murmur/internal/models"
	"murmur/internal/repository"
)

// FeedService implements the read side of the feed: the scoped main feed,
// the liked-posts listing, and single-post retrieval.
type FeedService struct {
	postRepo repository.PostRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

// ListFeed returns the viewer's feed page: published posts by the viewer and
// the users they follow, newest first, annotated with like/comment counts.
// hashtag, when non-empty, narrows by case-insensitive substring match.
func (s *FeedService) ListFeed(ctx context.Context, viewerID uint, hashtag string, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListFeed(ctx, viewerID, strings.TrimSpace(hashtag), limit, offset)
}

// ListLiked returns the posts the viewer liked. No follow-graph scoping here:
// a user sees everything they liked no matter who wrote it.
func (s *FeedService) ListLiked(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListLiked(ctx, viewerID, limit, offset)
}

// GetPost returns a single annotated post with its full comment list.
// Published posts are readable by any authenticated viewer; an unpublished
// post is visible only to its owner and reported as missing to everyone else.
// Cache-aside on the post key; edits, deletes, likes and comments invalidate
// it. The visibility check runs after the cache read so a cached draft is
// still hidden from other viewers.
func (s *FeedService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		fetched, err := s.postRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		post = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && post.UserID != viewerID {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &post, nil
}

// ListLikes returns the likes on a post, oldest first.
func (s *FeedService) ListLikes(ctx context.Context, viewerID, postID uint, limit, offset int) ([]models.Like, error) {
	if _, err := s.GetPost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	return s.postRepo.ListLikes(ctx, postID, limit, offset)
}
