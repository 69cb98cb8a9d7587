package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/task-tracker/internal/models"
)

// Store is the persistence the service depends on. Task operations are always
// scoped by owner id.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)

	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, ownerID, taskID int64) (*models.Task, error)
	ListTasks(ctx context.Context, ownerID int64, filter models.Filter) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, ownerID, taskID int64) (bool, error)
}

// Notifier sends user-facing e-mails. It is optional.
type Notifier interface {
	SendWelcome(to, username string) error
}

// Service handles business logic
type Service struct {
	repo     Store
	log      *logrus.Logger
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService initializes a new service. notifier may be nil.
func NewService(repo Store, log *logrus.Logger, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		log:      log,
		notifier: notifier,
		validate: newValidator(),
		now:      time.Now,
		loc:      time.Local,
	}
}

// SetLocation sets the zone form dates are read in. nil keeps the current one.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// Location is the zone form dates are read and shown in
func (s *Service) Location() *time.Location {
	return s.loc
}
