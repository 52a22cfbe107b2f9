package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"chronle/adapters/postgres"
	"chronle/api"
	"chronle/app"
	"chronle/internal/config"
	"chronle/internal/migration"
	"chronle/internal/ops"
	"chronle/internal/usage"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	events := postgres.NewEventPoolRepository(db)
	puzzles := postgres.NewPuzzleRepository(db)
	attempts := postgres.NewAttemptRepository(db)
	usageRepo := postgres.NewLLMUsageRepository(db)

	playService := app.NewPlayService(puzzles, attempts)
	usageService := usage.NewService(usageRepo)

	opsRouter := ops.NewRouter(events, usageService)
	go func() {
		addr := ":" + cfg.Server.OpsPort
		log.Printf("[Ops] listening on %s", addr)
		if err := http.ListenAndServe(addr, opsRouter.Handler()); err != nil {
			log.Fatalf("Ops server failed: %v", err)
		}
	}()

	server := api.NewServer(playService)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
}
