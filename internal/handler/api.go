package handler

import (
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/Dan9191/task-tracker/internal/models"
)

type apiTask struct {
	models.Task
	Overdue bool `json:"overdue"`
}

type tasksResponse struct {
	Tasks     []apiTask     `json:"tasks"`
	Message   string        `json:"message,omitempty"`
	Filter    models.Filter `json:"filter"`
	Sort      models.Sort   `json:"sort"`
	Total     int           `json:"total"`
	Pending   int           `json:"pending"`
	Completed int           `json:"completed"`
	Overdue   int           `json:"overdue"`
}

// APITasks returns the task list as JSON
func (h *Handler) APITasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.QueryTasks(r.Context(), owner(r), models.ParseFilter(q.Get("filter")), models.ParseSort(q.Get("sort")))
	if err != nil {
		h.log.WithError(err).Error("Failed to query tasks")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	now := h.now()
	resp := tasksResponse{
		Tasks:     make([]apiTask, 0, len(list.Tasks)),
		Filter:    list.Filter,
		Sort:      list.Sort,
		Total:     list.Total,
		Pending:   list.Pending,
		Completed: list.Completed,
		Overdue:   list.Overdue,
	}
	for _, t := range list.Tasks {
		resp.Tasks = append(resp.Tasks, apiTask{Task: t, Overdue: t.IsOverdue(now)})
	}
	if len(resp.Tasks) == 0 {
		resp.Message = "No tasks match this filter"
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
