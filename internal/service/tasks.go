package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// CreateTaskInput holds the fields for a new task.
type CreateTaskInput struct {
	ProjectID     string
	Title         string
	Description   string
	AssigneeID    string
	Status        models.TaskStatus
	EstimateHours decimal.Decimal
	DueDate       *time.Time
}

// CreateTask creates a task in a project. A supplied assignee must already
// be a member of the project.
func (s *Service) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title, err := trimmedName(input.Title, "title")
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.TaskTodo
	}
	if !models.ValidTaskStatus(status) {
		return nil, newValidationError("status", "unknown task status")
	}
	if input.EstimateHours.IsNegative() {
		return nil, newValidationError("estimate_hours", "estimate must not be negative")
	}

	var task *models.Task
	err = s.store.WithTx(ctx, func(store storage.Store) error {
		project, err := store.Projects().GetByID(ctx, input.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return newNotFoundError("project", input.ProjectID)
		}
		if err := checkMembership(ctx, store, input.ProjectID, input.AssigneeID, "assignee"); err != nil {
			return err
		}

		task = &models.Task{
			ID:            uuid.New().String(),
			ProjectID:     input.ProjectID,
			Title:         title,
			Description:   input.Description,
			AssigneeID:    input.AssigneeID,
			Status:        status,
			EstimateHours: input.EstimateHours,
			DueDate:       input.DueDate,
			CreatedAt:     time.Now(),
		}
		if err := store.Tasks().Create(ctx, task); err != nil {
			return err
		}
		task, err = store.Tasks().GetByID(ctx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskInput holds the optional fields for a task update. Nil fields
// are left untouched; ClearDueDate nulls out the due date. Assignee changes
// go through ReassignTask.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	EstimateHours *decimal.Decimal
	DueDate       *time.Time
	ClearDueDate  bool
}

// UpdateTask applies a partial update to a task.
func (s *Service) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*models.Task, error) {
	var task *models.Task
	err := s.store.WithTx(ctx, func(store storage.Store) error {
		var err error
		task, err = store.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return newNotFoundError("task", id)
		}

		if input.Title != nil {
			title, err := trimmedName(*input.Title, "title")
			if err != nil {
				return err
			}
			task.Title = title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			if !models.ValidTaskStatus(*input.Status) {
				return newValidationError("status", "unknown task status")
			}
			task.Status = *input.Status
		}
		if input.EstimateHours != nil {
			if input.EstimateHours.IsNegative() {
				return newValidationError("estimate_hours", "estimate must not be negative")
			}
			task.EstimateHours = *input.EstimateHours
		}
		switch {
		case input.ClearDueDate:
			task.DueDate = nil
		case input.DueDate != nil:
			task.DueDate = input.DueDate
		}
		if err := store.Tasks().Update(ctx, task); err != nil {
			return err
		}
		task, err = store.Tasks().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ReassignTask sets or clears the task's assignee. A nil assignee clears
// the assignment; a non-nil one must be a member of the task's project.
// Only the assignee field is persisted.
func (s *Service) ReassignTask(ctx context.Context, id string, assigneeID *string) (*models.Task, error) {
	var task *models.Task
	err := s.store.WithTx(ctx, func(store storage.Store) error {
		var err error
		task, err = store.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return newNotFoundError("task", id)
		}

		newAssignee := ""
		if assigneeID != nil {
			newAssignee = *assigneeID
		}
		if err := checkMembership(ctx, store, task.ProjectID, newAssignee, "assignee"); err != nil {
			return err
		}
		if err := store.Tasks().UpdateAssignee(ctx, id, newAssignee); err != nil {
			return err
		}
		task, err = store.Tasks().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task together with its time entries.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return newNotFoundError("task", id)
	}
	return s.store.Tasks().Delete(ctx, id)
}

// GetTask returns a task by id.
func (s *Service) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, newNotFoundError("task", id)
	}
	return task, nil
}

// ListTasks returns tasks matching the filter, newest first.
func (s *Service) ListTasks(ctx context.Context, filter storage.TaskFilter) ([]*models.Task, error) {
	return s.store.Tasks().List(ctx, filter)
}
