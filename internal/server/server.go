// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"murmur/internal/cache"
	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/media"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/scheduler"
	"murmur/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	mediaStore media.Store
	queue      scheduler.Queue

	postService    *service.PostService
	feedService    *service.FeedService
	commentService *service.CommentService
	followService  *service.FollowService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("murmur-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		mediaStore:     media.NewDiskStore(cfg.MediaDir),
		queue:          scheduler.NewRedisQueue(redisClient),
	}

	middleware.InitMiddleware(cfg)

	s.postService = service.NewPostService(s.postRepo, s.queue)
	s.feedService = service.NewFeedService(s.postRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.followService = service.NewFollowService(s.followRepo, s.userRepo)
	s.userService = service.NewUserService(s.userRepo, s.followRepo, s.mediaStore)

	// Authenticated requests check their token JTI against the Redis denylist.
	middleware.TokenRevoked = func(c *fiber.Ctx, jti string) bool {
		return cache.IsTokenRevoked(c.Context(), jti)
	}

	return s
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for log correlation
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded media
	app.Static("/media", s.config.MediaDir)

	// Auth routes, credential endpoints rate limited by IP
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 10, time.Minute, "auth_signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, time.Minute, "auth_login"), s.Login)
	auth.Post("/refresh", middleware.AuthRequired, s.Refresh)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/me/picture", s.UploadMyPicture)
	users.Get("/", s.GetAllUsers)
	// Specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Post("/:id/toggle-follow", s.ToggleFollow)
	users.Get("/:id", s.GetUserProfile)

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Get("/", s.GetFeed)
	posts.Get("/liked", s.GetLikedPosts)
	// Specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/toggle-like", s.TogglePostLike)
	posts.Get("/:id/likes", s.GetPostLikes)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Get("/:id/comments", s.GetComments)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Post("/:id/media", s.UploadPostMedia)
	// Generic /:id routes
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis backs the scheduler queue and token denylist, so a missing
		// client means degraded readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// errorHandler turns errors that escape the handlers into the standard
// error envelope instead of Fiber's default text response.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// Start builds the Fiber app, wires middleware and routes, and listens on
// the configured port.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:      "Murmur API",
		BodyLimit:    10 * 1024 * 1024, // media uploads
		ErrorHandler: s.errorHandler,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
