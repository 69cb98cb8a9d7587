package reminder

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/task-tracker/internal/models"
)

type stubStore struct {
	users   []models.User
	overdue map[int64][]models.Task
	filters []models.Filter
}

func (s *stubStore) ListUsers(context.Context) ([]models.User, error) {
	return s.users, nil
}

func (s *stubStore) ListTasks(_ context.Context, ownerID int64, filter models.Filter) ([]models.Task, error) {
	s.filters = append(s.filters, filter)
	return s.overdue[ownerID], nil
}

type sent struct {
	to    string
	count int
}

type stubMailer struct {
	sent []sent
	fail map[string]bool
}

func (m *stubMailer) SendOverdueDigest(to, _ string, tasks []models.Task) error {
	if m.fail[to] {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sent{to: to, count: len(tasks)})
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunMailsOnlyUsersWithOverdueTasks(t *testing.T) {
	due := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	store := &stubStore{
		users: []models.User{
			{ID: 1, Username: "alice", Email: "alice@example.com"},
			{ID: 2, Username: "bob", Email: "bob@example.com"},
			{ID: 3, Username: "carol", Email: "carol@example.com"},
		},
		overdue: map[int64][]models.Task{
			1: {{ID: 10, Title: "Report", DueDate: &due}, {ID: 11, Title: "Taxes", DueDate: &due}},
			3: {{ID: 30, Title: "Dentist", DueDate: &due}},
		},
	}
	mailer := &stubMailer{fail: map[string]bool{"carol@example.com": true}}

	res, err := NewJob(store, mailer, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Users != 3 || res.Mailed != 1 || res.Failed != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "alice@example.com" || mailer.sent[0].count != 2 {
		t.Fatalf("unexpected deliveries %+v", mailer.sent)
	}
	for _, f := range store.filters {
		if f != models.FilterOverdue {
			t.Fatalf("expected overdue filter, got %s", f)
		}
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	store := &stubStore{users: []models.User{{ID: 1, Email: "a@example.com"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJob(store, &stubMailer{}, quietLogger()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
