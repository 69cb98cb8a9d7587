package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/task-tracker/internal/models"
)

// fakeStore mirrors the owner scoping of the PostgreSQL repository in memory.
type fakeStore struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID int64
	users  map[int64]*models.User
	tasks  map[int64]models.Task
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:   now,
		users: make(map[int64]*models.User),
		tasks: make(map[int64]models.Task),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return models.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = f.now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) CreateTask(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := f.now()
	task.ID = f.nextID
	task.Completed = false
	task.CreatedAt = now
	task.UpdatedAt = now
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeStore) GetTask(_ context.Context, ownerID, taskID int64) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) ListTasks(_ context.Context, ownerID int64, filter models.Filter) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	out := []models.Task{}
	for _, t := range f.tasks {
		if t.UserID != ownerID {
			continue
		}
		switch filter {
		case models.FilterPending:
			if t.Completed {
				continue
			}
		case models.FilterCompleted:
			if !t.Completed {
				continue
			}
		case models.FilterOverdue:
			if !t.IsOverdue(now) {
				continue
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.tasks[task.ID]
	if !ok || prev.UserID != task.UserID {
		return models.ErrNotFound
	}
	updated := f.now()
	if !updated.After(prev.UpdatedAt) {
		updated = prev.UpdatedAt.Add(time.Microsecond)
	}
	task.UpdatedAt = updated
	task.CreatedAt = prev.CreatedAt
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeStore) DeleteTask(_ context.Context, ownerID, taskID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(f.tasks, taskID)
	return true, nil
}

func (f *fakeStore) taskCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *fakeStore) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// stepClock returns a fixed instant that moves forward by step on every read.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) SendWelcome(to, username string) error {
	n.sent = append(n.sent, to+"|"+username)
	return n.err
}

var testNow = time.Date(2025, 8, 7, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	clock := &stepClock{t: testNow, step: time.Millisecond}
	store := newFakeStore(clock.Now)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(store, logger, nil)
	svc.now = clock.Now
	svc.loc = time.UTC
	return svc, store
}
