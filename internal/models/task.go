package models

import "time"

// MaxTitleLength is the longest title, in characters, a task may carry.
const MaxTitleLength = 200

// Task represents a single to-do item owned by one user
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOverdue reports whether the task has a due date before now and is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// TaskList is the result of a filtered and sorted query. Counts always cover
// every task of the owner, whatever filter was applied.
type TaskList struct {
	Tasks     []Task `json:"tasks"`
	Filter    Filter `json:"filter"`
	Sort      Sort   `json:"sort"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Completed int    `json:"completed"`
	Overdue   int    `json:"overdue"`
}
