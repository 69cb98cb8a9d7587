package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Dan9191/task-tracker/internal/middleware"
	"github.com/Dan9191/task-tracker/internal/models"
	"github.com/Dan9191/task-tracker/internal/service"
	"github.com/Dan9191/task-tracker/internal/session"
)

// owner returns the id of the logged-in user. Routes using it sit behind
// middleware.RequireUser.
func owner(r *http.Request) int64 {
	s, _ := middleware.SessionFromContext(r.Context())
	if s == nil {
		return 0
	}
	return s.UserID
}

// taskID parses the {id} path variable. Malformed ids are reported as not
// found, the same as ids of other users' tasks.
func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) taskNotFound(w http.ResponseWriter, r *http.Request) {
	session.SetFlash(w, session.FlashDanger, "Task not found")
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// loadTask fetches the owned task named in the path, answering the request
// itself when that is not possible.
func (h *Handler) loadTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	id, ok := taskID(r)
	if !ok {
		h.taskNotFound(w, r)
		return nil, false
	}
	task, err := h.svc.GetTask(r.Context(), owner(r), id)
	if errors.Is(err, models.ErrNotFound) {
		h.taskNotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return task, true
}

// Index redirects to the task list
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// ListTasks renders the filtered and sorted task list
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.QueryTasks(r.Context(), owner(r), models.ParseFilter(q.Get("filter")), models.ParseSort(q.Get("sort")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "tasks", view{
		Title:   "My tasks",
		List:    list,
		Filters: models.Filters,
		Sorts:   models.Sorts,
	})
}

// NewTaskForm shows an empty task form
func (h *Handler) NewTaskForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "task_form", view{Title: "New task", Action: "/tasks/new"})
}

func readTaskForm(r *http.Request) (service.TaskForm, map[string]string) {
	form := service.TaskForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		DueDate:     r.PostFormValue("due_date"),
	}
	return form, map[string]string{
		"title":       form.Title,
		"description": form.Description,
		"due_date":    form.DueDate,
	}
}

// CreateTask handles the new task form
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	form, values := readTaskForm(r)
	in, err := h.svc.ParseTaskForm(form)
	if err == nil {
		_, err = h.svc.CreateTask(r.Context(), owner(r), in)
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		h.render(w, r, http.StatusUnprocessableEntity, "task_form", view{
			Title: "New task", Action: "/tasks/new", Form: values, Errors: verr.Fields,
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	session.SetFlash(w, session.FlashSuccess, "Task created")
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// ShowTask renders a single task
func (h *Handler) ShowTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "task_detail", view{Title: task.Title, Task: task})
}

// EditTaskForm shows the task form filled with the current values
func (h *Handler) EditTaskForm(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "task_form", view{
		Title:  "Edit task",
		Action: "/tasks/" + strconv.FormatInt(task.ID, 10) + "/edit",
		Task:   task,
		Form: map[string]string{
			"title":       task.Title,
			"description": task.Description,
			"due_date":    inputTime(task.DueDate, h.loc),
		},
	})
}

// UpdateTask handles the edit form
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.taskNotFound(w, r)
		return
	}
	form, values := readTaskForm(r)
	in, err := h.svc.ParseTaskForm(form)
	if err == nil {
		_, err = h.svc.EditTask(r.Context(), owner(r), id, in)
	}
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		h.render(w, r, http.StatusUnprocessableEntity, "task_form", view{
			Title: "Edit task", Action: "/tasks/" + strconv.FormatInt(id, 10) + "/edit", Form: values, Errors: verr.Fields,
		})
	case errors.Is(err, models.ErrNotFound):
		h.taskNotFound(w, r)
	case err != nil:
		h.fail(w, r, err)
	default:
		session.SetFlash(w, session.FlashSuccess, "Task updated")
		http.Redirect(w, r, "/tasks/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
	}
}

// DeleteTask removes a task
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.taskNotFound(w, r)
		return
	}
	removed, err := h.svc.DeleteTask(r.Context(), owner(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		h.taskNotFound(w, r)
		return
	}
	session.SetFlash(w, session.FlashSuccess, "Task deleted")
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// ToggleTask flips the completed state of a task
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		h.taskNotFound(w, r)
		return
	}
	task, err := h.svc.ToggleTask(r.Context(), owner(r), id)
	if errors.Is(err, models.ErrNotFound) {
		h.taskNotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if task.Completed {
		session.SetFlash(w, session.FlashSuccess, "Task marked as completed")
	} else {
		session.SetFlash(w, session.FlashInfo, "Task marked as pending")
	}
	http.Redirect(w, r, localRedirect(r.PostFormValue("next"), "/tasks"), http.StatusSeeOther)
}

// localRedirect accepts only same-site task paths.
func localRedirect(next, fallback string) string {
	if strings.HasPrefix(next, "/tasks") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return fallback
}
