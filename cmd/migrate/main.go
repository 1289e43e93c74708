// Command migrate applies the database schema for Murmur.
package main

import (
	"log"

	"murmur/internal/config"
	"murmur/internal/database"
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

	// Connect already migrates outside production; run explicitly so this
	// command works there too.
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration complete")
}
