package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidquiz-backend/internal/config"
	"vidquiz-backend/internal/database"
	"vidquiz-backend/internal/handlers"
	"vidquiz-backend/internal/middleware"
	"vidquiz-backend/internal/pipeline"
	"vidquiz-backend/internal/repository"
	"vidquiz-backend/internal/router"
	"vidquiz-backend/internal/services"
	"vidquiz-backend/internal/websocket"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Connected to PostgreSQL")

	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Migrations applied")

	// Redis
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Connected to Redis")

	// Gemini
	ctx := context.Background()
	gemini, err := pipeline.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer gemini.Close()
	log.Println("✓ Gemini client ready")

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)

	// Quiz generation chain
	quizPipeline := pipeline.New(
		pipeline.NewYouTubeFetcher(),
		pipeline.NewAudioTranscriber(gemini),
		pipeline.NewGeminiQuizGenerator(gemini),
		quizRepo,
		redisClients.PubSub,
		pipeline.Timeouts{
			Fetch:      cfg.FetchTimeout,
			Transcribe: cfg.TranscribeTimeout,
			Generate:   cfg.GenerateTimeout,
		},
	)

	// Auth
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Tokens, jwtAuth)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizPipeline, quizRepo)

	// WebSocket hub
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)

	r := router.New(jwtAuth, authHandler, quizHandler, wsHub, cfg.FrontendURL)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // quiz generation runs inside the request
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
