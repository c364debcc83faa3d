package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/lib/pq"

	"chronicle/internal/platform/config"
	"chronicle/internal/platform/logger"
	"chronicle/internal/platform/postgres"
)

// main applies the embedded schema to the configured database. The schema is
// idempotent, so re-running against an initialized database is a no-op.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	log.Info("schema applied")
}
