package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/Dan9191/task-tracker/internal/config"
	"github.com/Dan9191/task-tracker/internal/handler"
	"github.com/Dan9191/task-tracker/internal/repository"
	"github.com/Dan9191/task-tracker/internal/service"
	"github.com/Dan9191/task-tracker/internal/session"
	"github.com/Dan9191/task-tracker/internal/utils/email"
)

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	repo := repository.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatalf("Failed to apply schema: %v", err)
	}

	// Initialize session store
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	sessions := session.NewManager(rdb, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	if err := sessions.Ping(ctx); err != nil {
		logger.Fatalf("Failed to ping redis: %v", err)
	}

	// Initialize layers
	var notifier service.Notifier
	if cfg.MailEnabled() {
		notifier = email.NewSender(cfg, logger)
	} else {
		logger.Info("SMTP_HOST not set, welcome e-mails are disabled")
	}
	svc := service.NewService(repo, logger, notifier)
	svc.SetLocation(cfg.Location)
	h, err := handler.NewHandler(svc, sessions, logger,
		handler.HealthCheck{Name: "postgres", Ping: repo.Ping},
		handler.HealthCheck{Name: "redis", Ping: sessions.Ping},
	)
	if err != nil {
		logger.Fatalf("Failed to initialize handlers: %v", err)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
