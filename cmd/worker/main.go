// Command main runs the Murmur background worker that publishes scheduled
// posts when their time arrives.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"murmur/internal/cache"
	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/repository"
	"murmur/internal/scheduler"
	"murmur/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()
	if redisClient == nil {
		log.Fatal("Redis is required for the scheduler worker")
	}

	queue := scheduler.NewRedisQueue(redisClient)
	postRepo := repository.NewPostRepository(db)
	postService := service.NewPostService(postRepo, queue)

	worker := scheduler.NewWorker(queue, time.Duration(cfg.WorkerPollMillis)*time.Millisecond)
	worker.Register(scheduler.KindPublishPost, postService.PublishScheduled)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	log.Printf("Worker polling every %dms...", cfg.WorkerPollMillis)
	worker.Run(ctx)

	cache.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Worker shutdown complete")
}
