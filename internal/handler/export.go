package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Dan9191/task-tracker/internal/middleware"
	"github.com/Dan9191/task-tracker/internal/models"
)

// ExportTasks downloads the filtered and sorted task list as XML
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.QueryTasks(r.Context(), owner(r), models.ParseFilter(q.Get("filter")), models.ParseSort(q.Get("sort")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	username := ""
	if s, ok := middleware.SessionFromContext(r.Context()); ok {
		username = s.Username
	}

	doc := buildExport(username, list, h.now())
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.xml"`)
	if _, err := doc.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("Failed to write XML export")
	}
}

func buildExport(username string, list *models.TaskList, now time.Time) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("tasks")
	root.CreateAttr("owner", username)
	root.CreateAttr("filter", string(list.Filter))
	root.CreateAttr("sort", string(list.Sort))
	root.CreateAttr("exported_at", now.Format(time.RFC3339))

	for _, t := range list.Tasks {
		el := root.CreateElement("task")
		el.CreateAttr("id", strconv.FormatInt(t.ID, 10))
		el.CreateAttr("completed", strconv.FormatBool(t.Completed))
		el.CreateAttr("overdue", strconv.FormatBool(t.IsOverdue(now)))
		el.CreateElement("title").SetText(t.Title)
		if t.Description != "" {
			el.CreateElement("description").SetText(t.Description)
		}
		if t.DueDate != nil {
			el.CreateElement("due_date").SetText(t.DueDate.Format(time.RFC3339))
		}
		el.CreateElement("created_at").SetText(t.CreatedAt.Format(time.RFC3339))
		el.CreateElement("updated_at").SetText(t.UpdatedAt.Format(time.RFC3339))
	}

	doc.Indent(2)
	return doc
}
