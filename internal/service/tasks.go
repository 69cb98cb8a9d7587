package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/task-tracker/internal/models"
)

// CreateTask stores a new open task for ownerID
func (s *Service) CreateTask(ctx context.Context, ownerID int64, in TaskInput) (*models.Task, error) {
	in, err := s.recheck(in)
	if err != nil {
		return nil, err
	}
	task := &models.Task{
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": ownerID, "task_id": task.ID}).Info("Task created")
	return task, nil
}

// GetTask returns the task if ownerID owns it, models.ErrNotFound otherwise
func (s *Service) GetTask(ctx context.Context, ownerID, taskID int64) (*models.Task, error) {
	return s.repo.GetTask(ctx, ownerID, taskID)
}

// EditTask replaces title, description and due date of an owned task
func (s *Service) EditTask(ctx context.Context, ownerID, taskID int64, in TaskInput) (*models.Task, error) {
	in, err := s.recheck(in)
	if err != nil {
		return nil, err
	}
	task, err := s.repo.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = in.DueDate
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": ownerID, "task_id": task.ID}).Info("Task updated")
	return task, nil
}

// UpdateTask persists every mutable field of task as it is
func (s *Service) UpdateTask(ctx context.Context, task *models.Task) error {
	return s.repo.UpdateTask(ctx, task)
}

// MarkCompleted sets the task as done and persists it
func (s *Service) MarkCompleted(ctx context.Context, task *models.Task) error {
	task.Completed = true
	return s.repo.UpdateTask(ctx, task)
}

// MarkPending reopens the task and persists it
func (s *Service) MarkPending(ctx context.Context, task *models.Task) error {
	task.Completed = false
	return s.repo.UpdateTask(ctx, task)
}

// ToggleTask flips the completion state of an owned task
func (s *Service) ToggleTask(ctx context.Context, ownerID, taskID int64) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		err = s.MarkPending(ctx, task)
	} else {
		err = s.MarkCompleted(ctx, task)
	}
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": ownerID, "task_id": task.ID, "completed": task.Completed}).Info("Task toggled")
	return task, nil
}

// DeleteTask removes an owned task. It reports false when nothing was removed.
func (s *Service) DeleteTask(ctx context.Context, ownerID, taskID int64) (bool, error) {
	removed, err := s.repo.DeleteTask(ctx, ownerID, taskID)
	if err != nil {
		return false, err
	}
	if removed {
		s.log.WithFields(logrus.Fields{"user_id": ownerID, "task_id": taskID}).Info("Task deleted")
	}
	return removed, nil
}

// ListTasks returns the owner's tasks matching filter in creation order
func (s *Service) ListTasks(ctx context.Context, ownerID int64, filter models.Filter) ([]models.Task, error) {
	return s.repo.ListTasks(ctx, ownerID, filter)
}

// recheck guards against a TaskInput built by hand instead of ParseTaskForm.
func (s *Service) recheck(in TaskInput) (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	verr := &models.ValidationError{}
	s.collect(verr, in)
	if err := verr.OrNil(); err != nil {
		return TaskInput{}, err
	}
	return in, nil
}
