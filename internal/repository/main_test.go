package repository

import (
	"testing"
	"time"

	"murmur/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
// The unique pair indexes the toggle engine relies on are created by the
// model tags, so convergence behaves the same as against Postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email, Password: "pw"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, text, hashtag string, published bool, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Text:        text,
		Hashtag:     hashtag,
		UserID:      userID,
		IsPublished: published,
		CreatedAt:   createdAt,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post %q: %v", text, err)
	}
	return post
}
