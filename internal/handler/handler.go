package handler

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/task-tracker/internal/middleware"
	"github.com/Dan9191/task-tracker/internal/models"
	"github.com/Dan9191/task-tracker/internal/service"
	"github.com/Dan9191/task-tracker/internal/session"
)

// Service is the business logic the handlers call. *service.Service
// implements it.
type Service interface {
	ParseTaskForm(form service.TaskForm) (service.TaskInput, error)
	CreateTask(ctx context.Context, ownerID int64, in service.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, ownerID, taskID int64) (*models.Task, error)
	EditTask(ctx context.Context, ownerID, taskID int64, in service.TaskInput) (*models.Task, error)
	ToggleTask(ctx context.Context, ownerID, taskID int64) (*models.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID int64) (bool, error)
	QueryTasks(ctx context.Context, ownerID int64, filter models.Filter, sort models.Sort) (*models.TaskList, error)

	ParseRegisterForm(form service.RegisterForm) (service.RegisterInput, error)
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)

	Location() *time.Location
}

// Sessions starts, resolves and ends login sessions. *session.Manager
// implements it.
type Sessions interface {
	middleware.SessionLoader
	Create(ctx context.Context, w http.ResponseWriter, user *models.User) (*session.Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// HealthCheck is a named dependency probe for /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	svc       Service
	sessions  Sessions
	log       *logrus.Logger
	checks    []HealthCheck
	templates map[string]*template.Template
	now       func() time.Time
	loc       *time.Location
}

func NewHandler(svc Service, sessions Sessions, log *logrus.Logger, checks ...HealthCheck) (*Handler, error) {
	h := &Handler{svc: svc, sessions: sessions, log: log, checks: checks, now: time.Now, loc: svc.Location()}
	if h.loc == nil {
		h.loc = time.Local
	}
	tmpl, err := parseTemplates(func() time.Time { return h.now() }, h.loc)
	if err != nil {
		return nil, err
	}
	h.templates = tmpl
	return h, nil
}

// Routes builds the router with every page, API endpoint and middleware.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	chain := []mux.MiddlewareFunc{
		middleware.Authenticate(h.sessions, h.log),
		middleware.RequestLogger(h.log),
		middleware.Recover(h.log, h.ServerError),
	}
	r.Use(chain...)
	// mux only runs r.Use middleware on matched routes.
	r.NotFoundHandler = wrap(http.HandlerFunc(h.NotFound), chain)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(h.MethodNotAllowed), chain)

	// Public routes
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", h.RegisterForm).Methods(http.MethodGet)
	auth.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.LoginForm).Methods(http.MethodGet)
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)

	// Protected routes
	r.Handle("/", middleware.RequireUser(http.HandlerFunc(h.Index))).Methods(http.MethodGet)
	tasks := r.PathPrefix("/tasks").Subrouter()
	tasks.Use(middleware.RequireUser)
	tasks.HandleFunc("", h.ListTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/new", h.NewTaskForm).Methods(http.MethodGet)
	tasks.HandleFunc("/new", h.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/export.xml", h.ExportTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/{id}", h.ShowTask).Methods(http.MethodGet)
	tasks.HandleFunc("/{id}/edit", h.EditTaskForm).Methods(http.MethodGet)
	tasks.HandleFunc("/{id}/edit", h.UpdateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{id}/delete", h.DeleteTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{id}/toggle", h.ToggleTask).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAPIUser)
	api.HandleFunc("/tasks", h.APITasks).Methods(http.MethodGet)

	return r
}

// wrap applies chain to next, first element outermost.
func wrap(next http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		next = chain[i](next)
	}
	return next
}

// Healthz pings every registered dependency
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.log.WithError(err).Warnf("Health check %s failed", c.Name)
			http.Error(w, fmt.Sprintf("%s unavailable", c.Name), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
