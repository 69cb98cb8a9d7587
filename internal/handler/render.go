package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/Dan9191/task-tracker/internal/middleware"
	"github.com/Dan9191/task-tracker/internal/models"
	"github.com/Dan9191/task-tracker/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"login", "register", "tasks", "task_form", "task_detail", "404", "500"}

// view is the data every page template receives.
type view struct {
	Title   string
	User    *session.Session
	Flash   *session.Flash
	Errors  map[string]string
	Form    map[string]string
	Action  string
	Task    *models.Task
	List    *models.TaskList
	Filters []models.Filter
	Sorts   []models.Sort
}

func parseTemplates(now func() time.Time, loc *time.Location) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"formatTime": func(v any) string {
			return formatTime(v, loc)
		},
		"overdue": func(t models.Task) bool {
			return t.IsOverdue(now())
		},
	}
	set := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		set[name] = t
	}
	return set, nil
}

// formatTime shows a timestamp in loc, whatever zone the driver returned it in.
func formatTime(v any, loc *time.Location) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "—"
		}
		return t.In(loc).Format("2006-01-02 15:04")
	case *time.Time:
		if t == nil {
			return "—"
		}
		return formatTime(*t, loc)
	default:
		return ""
	}
}

// inputTime formats a due date for a datetime-local input in loc, the zone
// submitted dates are parsed in.
func inputTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("2006-01-02T15:04")
}

// render executes page inside the layout. The page is buffered so a template
// error never leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	if s, ok := middleware.SessionFromContext(r.Context()); ok {
		v.User = s
	}
	v.Flash = session.PopFlash(w, r)

	t, ok := h.templates[page]
	if !ok {
		h.log.Errorf("Unknown template %q", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		h.log.WithError(err).Errorf("Failed to render %s", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404", view{Title: "Page not found"})
}

// MethodNotAllowed renders the not-found page with a 405 status.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusMethodNotAllowed, "404", view{Title: "Method not allowed"})
}

// ServerError renders the generic 500 page.
func (h *Handler) ServerError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "500", view{Title: "Error"})
}

// fail logs an unexpected error and renders the 500 page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	entry := h.log.WithError(err).WithField("path", r.URL.Path)
	if s, ok := middleware.SessionFromContext(r.Context()); ok {
		entry = entry.WithField("user_id", s.UserID)
	}
	entry.Error("Request failed")
	h.ServerError(w, r)
}
