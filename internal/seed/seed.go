// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"murmur/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var hashtags = []string{
	"golang", "coffee", "travel", "music", "books", "fitness",
	"food", "photography", "gaming", "movies", "art", "science",
}

// Seed populates the database with test data: users, a follow mesh, posts
// (some scheduled in the future and still unpublished), comments, and likes.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	if err := createFollows(db, r, users); err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}

	posts, err := createPosts(db, r, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := createComments(db, r, users, posts); err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	if err := createLikes(db, r, users, posts); err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}

	log.Println("Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	// Dependents first so foreign keys never dangle.
	for _, model := range []any{
		&models.Like{}, &models.Comment{}, &models.Follow{},
		&models.Post{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username:  gofakeit.Username(),
			Email:     fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Bio:       gofakeit.Sentence(10),
			Password:  string(hashed),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createFollows(db *gorm.DB, r *rand.Rand, users []*models.User) error {
	for _, u := range users {
		n := r.Intn(len(users)/2 + 1)
		for i := 0; i < n; i++ {
			target := users[r.Intn(len(users))]
			if target.ID == u.ID {
				continue
			}
			follow := &models.Follow{FollowerID: u.ID, FolloweeID: target.ID}
			// Duplicate edges are expected with random targets; skip them.
			if err := db.Where(follow).FirstOrCreate(follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createPosts(db *gorm.DB, r *rand.Rand, users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[r.Intn(len(users))]
		post := &models.Post{
			Text:        gofakeit.Paragraph(1, 3, 8, " "),
			Hashtag:     hashtags[r.Intn(len(hashtags))],
			UserID:      author.ID,
			IsPublished: true,
			CreatedAt:   time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour),
		}
		// Roughly one post in ten is still waiting for its publication time.
		if r.Intn(10) == 0 {
			eta := time.Now().Add(time.Duration(1+r.Intn(72)) * time.Hour)
			post.ScheduledTime = &eta
			post.IsPublished = false
		}
		if err := db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createComments(db *gorm.DB, r *rand.Rand, users []*models.User, posts []*models.Post) error {
	for _, p := range posts {
		if !p.IsPublished {
			continue
		}
		n := r.Intn(5)
		for i := 0; i < n; i++ {
			comment := &models.Comment{
				Content: gofakeit.Sentence(8),
				UserID:  users[r.Intn(len(users))].ID,
				PostID:  p.ID,
			}
			if err := db.Create(comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createLikes(db *gorm.DB, r *rand.Rand, users []*models.User, posts []*models.Post) error {
	for _, p := range posts {
		if !p.IsPublished {
			continue
		}
		n := r.Intn(len(users)/3 + 1)
		for i := 0; i < n; i++ {
			like := &models.Like{
				UserID: users[r.Intn(len(users))].ID,
				PostID: p.ID,
			}
			// The unique (post, user) index rejects repeat likes; skip them.
			if err := db.Where(like).FirstOrCreate(like).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
