package service

import (
	"context"
	"testing"

	"murmur/internal/cache"
	"murmur/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_ListFeed_TrimsHashtag(t *testing.T) {
	t.Parallel()

	var gotHashtag string
	repo := noopPostRepo()
	repo.listFeedFn = func(_ context.Context, _ uint, hashtag string, _, _ int) ([]*models.Post, error) {
		gotHashtag = hashtag
		return nil, nil
	}

	svc := NewFeedService(repo)
	_, err := svc.ListFeed(context.Background(), 1, "  coffee  ", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "coffee", gotHashtag)
}

func TestFeedService_GetPost_Visibility(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1, IsPublished: false}, nil
	}

	svc := NewFeedService(repo)
	ctx := context.Background()

	t.Run("owner sees own unpublished post", func(t *testing.T) {
		t.Parallel()
		post, err := svc.GetPost(ctx, 5, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(5), post.ID)
	})

	t.Run("other viewers get not found", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetPost(ctx, 5, 2)
		assertNotFoundError(t, err)
	})
}

func TestFeedService_GetPost_CacheAside(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = client.Close()
	})

	calls := 0
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		calls++
		return &models.Post{ID: id, UserID: 1, IsPublished: true, Text: "from db"}, nil
	}

	svc := NewFeedService(repo)
	ctx := context.Background()

	post, err := svc.GetPost(ctx, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, "from db", post.Text)
	require.Equal(t, 1, calls)

	post, err = svc.GetPost(ctx, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, "from db", post.Text)
	assert.Equal(t, 1, calls, "second read must come from the cache")

	cache.InvalidatePost(ctx, 5)

	_, err = svc.GetPost(ctx, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "invalidation must send the next read back to the source")
}

func TestFeedService_ListLikes_ChecksPostVisibility(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1, IsPublished: false}, nil
	}
	repo.listLikesFn = func(_ context.Context, _ uint, _, _ int) ([]models.Like, error) {
		return []models.Like{{ID: 1}}, nil
	}

	svc := NewFeedService(repo)

	_, err := svc.ListLikes(context.Background(), 2, 5, 10, 0)
	assertNotFoundError(t, err)

	likes, err := svc.ListLikes(context.Background(), 1, 5, 10, 0)
	require.NoError(t, err)
	assert.Len(t, likes, 1)
}
