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

	"liveclass-backend/internal/config"
	"liveclass-backend/internal/database"
	"liveclass-backend/internal/handlers"
	"liveclass-backend/internal/middleware"
	"liveclass-backend/internal/repository"
	"liveclass-backend/internal/router"
	"liveclass-backend/internal/services"
	"liveclass-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting LiveClass Backend...")

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
	classRepo := repository.NewClassRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	enrollmentRepo := repository.NewEnrollmentRepo(pool)
	reminderRepo := repository.NewReminderRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	expander := services.NewSessionExpander(classRepo, sessionRepo, cfg.MeetingLinkBase)
	scanner := services.NewReminderScanner(
		sessionRepo,
		enrollmentRepo,
		reminderRepo,
		emailService,
		cfg.ReminderOffsetStart,
		cfg.ReminderOffsetEnd,
	)
	scanLock := services.NewScanLock(redisClients.Locks, 10*time.Minute)

	// ──── Initialize Handlers ────
	classHandler := handlers.NewClassHandler(classRepo, jobRepo, redisClients.Queue)
	sessionHandler := handlers.NewSessionHandler(expander, sessionRepo)
	reminderHandler := handlers.NewReminderHandler(scanner, scanLock)

	// ──── Step 5: Start Expansion Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, expander, jobRepo, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Step 6: Start Reminder Scheduler ────
	reminderScheduler := services.NewReminderScheduler(scanner, scanLock, cfg.ReminderCron)
	if err := reminderScheduler.Start(); err != nil {
		log.Fatalf("✗ Reminder scheduler failed to start: %v", err)
	}
	log.Println("✓ Reminder scheduler started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		cfg.CronSecret,
		classHandler,
		sessionHandler,
		reminderHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		reminderScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ LiveClass Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
