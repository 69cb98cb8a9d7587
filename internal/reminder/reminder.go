package reminder

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/task-tracker/internal/models"
)

// Store lists what a reminder run needs.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListTasks(ctx context.Context, ownerID int64, filter models.Filter) ([]models.Task, error)
}

// Mailer delivers the overdue digest.
type Mailer interface {
	SendOverdueDigest(to, username string, tasks []models.Task) error
}

// Job mails every user a digest of their overdue tasks.
type Job struct {
	store  Store
	mailer Mailer
	log    *logrus.Logger
}

// NewJob creates a reminder job
func NewJob(store Store, mailer Mailer, log *logrus.Logger) *Job {
	return &Job{store: store, mailer: mailer, log: log}
}

// Result summarizes one run.
type Result struct {
	Users  int
	Mailed int
	Failed int
}

// Run sends one digest per user with overdue tasks. A failed delivery is
// logged and counted; the run carries on with the next user.
func (j *Job) Run(ctx context.Context) (Result, error) {
	var res Result
	users, err := j.store.ListUsers(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list users: %w", err)
	}
	res.Users = len(users)

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		tasks, err := j.store.ListTasks(ctx, u.ID, models.FilterOverdue)
		if err != nil {
			return res, fmt.Errorf("failed to list overdue tasks for user %d: %w", u.ID, err)
		}
		if len(tasks) == 0 {
			continue
		}
		if err := j.mailer.SendOverdueDigest(u.Email, u.Username, tasks); err != nil {
			res.Failed++
			j.log.WithError(err).WithField("user_id", u.ID).Warn("Failed to send overdue digest")
			continue
		}
		res.Mailed++
	}
	return res, nil
}

// Tick runs the job and logs the outcome. It matches cron.FuncJob.
func (j *Job) Tick(ctx context.Context) func() {
	return func() {
		res, err := j.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			j.log.WithError(err).Error("Reminder run failed")
			return
		}
		j.log.WithFields(logrus.Fields{
			"users":  res.Users,
			"mailed": res.Mailed,
			"failed": res.Failed,
		}).Info("Reminder run finished")
	}
}
