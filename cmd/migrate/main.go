// Command migrate applies the engine's Postgres schema migrations.
package main

import (
	"log"
	"os"
	"time"

	"github.com/triviaengine/sessionengine/internal/config"
	"github.com/triviaengine/sessionengine/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), database.PoolSettings{
		MaxOpenConns:    cfg.Database.PoolSize,
		MaxIdleConns:    cfg.Database.PoolSize,
		ConnMaxLifetime: time.Duration(cfg.Database.PoolRecycleSeconds) * time.Second,
		ConnectTimeout:  time.Duration(cfg.Database.ConnectTimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("migrations applied successfully")
}
