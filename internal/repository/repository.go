package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Dan9191/task-tracker/internal/models"
)

//go:embed schema.sql
var schema string

const uniqueViolation = pq.ErrorCode("23505")

// Repository provides database operations
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Migrate creates the users and tasks tables when they do not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Reset drops every table and applies the schema again. Used by the seeder.
func (r *Repository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS tasks, users`); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return r.Migrate(ctx)
}

// Ping checks database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// duplicateUserError translates a unique constraint failure on users into a
// domain error. It returns nil for any other error.
func duplicateUserError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return models.ErrDuplicateUsername
	case "users_email_key":
		return models.ErrDuplicateEmail
	}
	return nil
}
