package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// serializeConnections forces the pool down to one connection so goroutines
// hammering sqlite interleave at the statement level without tripping its
// single-writer lock.
func serializeConnections(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
}

// runConcurrentToggles fires total toggles across workers against a single
// key and returns the created count, deleted count and any errors surfaced.
func runConcurrentToggles(t *testing.T, workers, perWorker int, toggle func() (ToggleResult, error)) (created, deleted int, errs []error) {
	t.Helper()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				res, err := toggle()
				mu.Lock()
				switch {
				case err != nil:
					errs = append(errs, err)
				case res == ToggleCreated:
					created++
				case res == ToggleDeleted:
					deleted++
				default:
					errs = append(errs, fmt.Errorf("unexpected toggle result %q", res))
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return created, deleted, errs
}

func TestToggleLike_ConcurrentCallsConverge(t *testing.T) {
	db := setupTestDB(t)
	serializeConnections(t, db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", "alice@example.com")
	post := createTestPost(t, db, user.ID, "race me", "", true, time.Now())

	created, deleted, errs := runConcurrentToggles(t, 4, 8, func() (ToggleResult, error) {
		return repo.ToggleLike(ctx, user.ID, post.ID)
	})

	require.Empty(t, errs, "no toggle may surface an error, conflicts included")
	assert.Equal(t, 32, created+deleted)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", post.ID, user.ID).
		Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1), "concurrent toggles must converge to at most one row")
}

func TestFollowRepository_ConcurrentTogglesConverge(t *testing.T) {
	db := setupTestDB(t)
	serializeConnections(t, db)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	created, deleted, errs := runConcurrentToggles(t, 4, 8, func() (ToggleResult, error) {
		return repo.Toggle(ctx, alice.ID, bob.ID)
	})

	require.Empty(t, errs, "no toggle may surface an error, conflicts included")
	assert.Equal(t, 32, created+deleted)

	var rows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", alice.ID, bob.ID).
		Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1), "concurrent toggles must converge to at most one edge")
}
