package service

import (
	"context"
	"slices"
	"strings"

	"github.com/Dan9191/task-tracker/internal/models"
)

// QueryTasks filters then sorts the owner's tasks. Counts are taken over every
// task of the owner, independent of filter.
func (s *Service) QueryTasks(ctx context.Context, ownerID int64, filter models.Filter, sort models.Sort) (*models.TaskList, error) {
	all, err := s.repo.ListTasks(ctx, ownerID, models.FilterAll)
	if err != nil {
		return nil, err
	}

	list := &models.TaskList{Filter: filter, Sort: sort, Total: len(all)}
	now := s.now()
	for i := range all {
		if all[i].Completed {
			list.Completed++
		} else {
			list.Pending++
		}
		if all[i].IsOverdue(now) {
			list.Overdue++
		}
	}

	tasks := all
	if filter != models.FilterAll {
		tasks, err = s.repo.ListTasks(ctx, ownerID, filter)
		if err != nil {
			return nil, err
		}
	}
	SortTasks(tasks, sort)
	list.Tasks = tasks
	return list, nil
}

// SortTasks orders tasks in place. The sort is stable, so ties keep the order
// they came in.
func SortTasks(tasks []models.Task, sort models.Sort) {
	switch sort {
	case models.SortDate:
		slices.SortStableFunc(tasks, compareDueDate)
	case models.SortTitle:
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return strings.Compare(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	}
}

// compareDueDate puts undated tasks first, then earliest due date.
func compareDueDate(a, b models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return -1
	case b.DueDate == nil:
		return 1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}
