package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"murmur/internal/cache"
	"murmur/internal/config"
	"murmur/internal/media"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/scheduler"
	"murmur/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "SecurePass12!@"

func setupHandlerTestDB(t *testing.T) *gorm.DB {
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

// newTestServer wires a full Server against in-memory sqlite and miniredis,
// skipping the Prometheus middleware so repeated construction in tests does
// not double-register collectors.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db := setupHandlerTestDB(t)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(redisClient)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = redisClient.Close()
	})

	cfg := &config.Config{
		JWTSecret:        "test-secret-key-for-handler-tests",
		Port:             "0",
		MediaDir:         t.TempDir(),
		WorkerPollMillis: 1000,
		Env:              "test",
	}
	middleware.InitMiddleware(cfg)
	middleware.TokenRevoked = func(c *fiber.Ctx, jti string) bool {
		return cache.IsTokenRevoked(c.Context(), jti)
	}

	s := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		followRepo:  repository.NewFollowRepository(db),
		mediaStore:  media.NewDiskStore(cfg.MediaDir),
		queue:       scheduler.NewRedisQueue(redisClient),
	}
	s.postService = service.NewPostService(s.postRepo, s.queue)
	s.feedService = service.NewFeedService(s.postRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.followService = service.NewFollowService(s.followRepo, s.userRepo)
	s.userService = service.NewUserService(s.userRepo, s.followRepo, s.mediaStore)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(b))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if len(raw) > 0 && json.Valid(raw) {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func doJSONList(t *testing.T, app *fiber.App, method, path, token string) (*http.Response, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded []map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

// signupUser registers a user through the API and returns its token and ID.
func signupUser(t *testing.T, app *fiber.App, username, email string) (string, uint) {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": username,
		"email":    email,
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: status %d, body %v", username, resp.StatusCode, body)
	}

	token, _ := body["token"].(string)
	user, _ := body["user"].(map[string]any)
	id, _ := user["id"].(float64)
	if token == "" || id == 0 {
		t.Fatalf("signup %s: incomplete response %v", username, body)
	}
	return token, uint(id)
}
