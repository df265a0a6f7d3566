package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhwanit3747/learnersai/internal/config"
	"github.com/dhwanit3747/learnersai/internal/database"
	"github.com/dhwanit3747/learnersai/internal/handlers"
	"github.com/dhwanit3747/learnersai/internal/middleware"
	"github.com/dhwanit3747/learnersai/internal/repository"
	"github.com/dhwanit3747/learnersai/internal/router"
	"github.com/dhwanit3747/learnersai/internal/services"
	"github.com/dhwanit3747/learnersai/internal/session"
	"github.com/dhwanit3747/learnersai/internal/websocket"
	"github.com/dhwanit3747/learnersai/internal/worker"
)

func main() {
	log.Println("🚀 Starting Learners AI Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	contentRepo := repository.NewContentRepo(pool)
	activityRepo := repository.NewActivityRepo(pool)

	// ──── Step 5: Initialize Gemini Content Generator ────
	generator, err := services.NewGeneratorService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer generator.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, jwtAuth)
	recorder := services.NewActivityRecorder(redisClients.Queue, activityRepo, userRepo)
	sessionStore := session.NewStore()

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	learnHandler := handlers.NewLearnHandler(generator, sessionStore, recorder, contentRepo)
	dashboardHandler := handlers.NewDashboardHandler(userRepo, activityRepo, contentRepo)

	// ──── Step 6: Start Activity Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, recorder, cfg.ActivityWorkers)
	workerPool.Start()

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		learnHandler,
		dashboardHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Learners AI Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
