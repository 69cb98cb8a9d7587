package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/task-tracker/internal/models"
)

// Every statement on tasks is parameterized by the owner's user_id. A task that
// belongs to another user is indistinguishable from one that does not exist.

const taskColumns = `id, user_id, title, description, completed, due_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		dueDate     sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Completed, &dueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	t.Description = description.String
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateTask inserts a new open task for task.UserID
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	now := r.now()
	query := `
		INSERT INTO tasks (user_id, title, description, completed, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, task.UserID, task.Title, nullString(task.Description), nullTime(task.DueDate), now).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.Completed = false
	return nil
}

// GetTask retrieves a task owned by ownerID
func (r *Repository) GetTask(ctx context.Context, ownerID, taskID int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// ListTasks returns the owner's tasks matching filter in creation order
func (r *Repository) ListTasks(ctx context.Context, ownerID int64, filter models.Filter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{ownerID}
	switch filter {
	case models.FilterPending:
		query += ` AND completed = FALSE`
	case models.FilterCompleted:
		query += ` AND completed = TRUE`
	case models.FilterOverdue:
		query += ` AND due_date IS NOT NULL AND due_date < $2 AND completed = FALSE`
		args = append(args, r.now())
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask persists the mutable fields of task and refreshes updated_at.
// updated_at always moves forward, even when the clock has not.
func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, due_date = $4,
		    updated_at = GREATEST($5, updated_at + INTERVAL '1 microsecond')
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, nullString(task.Description), task.Completed, nullTime(task.DueDate), r.now(),
		task.ID, task.UserID,
	).Scan(&task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task owned by ownerID. It reports whether a row existed.
func (r *Repository) DeleteTask(ctx context.Context, ownerID, taskID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return n > 0, nil
}
