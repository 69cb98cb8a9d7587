package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/Dan9191/task-tracker/internal/config"
	"github.com/Dan9191/task-tracker/internal/reminder"
	"github.com/Dan9191/task-tracker/internal/repository"
	"github.com/Dan9191/task-tracker/internal/utils/email"
)

func main() {
	once := flag.Bool("once", false, "send the overdue digests once and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	if !cfg.MailEnabled() {
		logger.Fatal("SMTP_HOST is required to send reminders")
	}

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

	job := reminder.NewJob(repository.NewRepository(db), email.NewSender(cfg, logger), logger)
	if *once {
		job.Tick(ctx)()
		return
	}

	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(logger)))
	if _, err := c.AddFunc(cfg.ReminderSchedule, job.Tick(ctx)); err != nil {
		logger.Fatalf("Invalid REMINDER_SCHEDULE %q: %v", cfg.ReminderSchedule, err)
	}
	c.Start()
	logger.Infof("Reminder scheduled with %q", cfg.ReminderSchedule)

	<-ctx.Done()
	logger.Info("Shutting down")
	<-c.Stop().Done()
}
