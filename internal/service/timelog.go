package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// LogTimeInput holds the fields for a new time entry.
type LogTimeInput struct {
	TaskID string
	UserID string
	Date   time.Time
	Hours  decimal.Decimal
	Note   string
}

// LogTime records hours worked on a task. The input checks run before the
// authorization check, so invalid hours or a future date fail as validation
// errors even for callers who could not log against the task at all. The
// logging user must be the task's assignee or a member of its project.
func (s *Service) LogTime(ctx context.Context, input LogTimeInput) (*models.TimeEntry, error) {
	if err := checkTimeEntry(input.Date, input.Hours, s.today()); err != nil {
		return nil, err
	}

	var entry *models.TimeEntry
	err := s.store.WithTx(ctx, func(store storage.Store) error {
		task, err := store.Tasks().GetByID(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return newNotFoundError("task", input.TaskID)
		}

		if task.AssigneeID != input.UserID {
			isMember, err := store.Projects().IsMember(ctx, task.ProjectID, input.UserID)
			if err != nil {
				return err
			}
			if !isMember {
				return newAuthorizationError("user may not log time on this task: not the assignee or a project member")
			}
		}

		entry = &models.TimeEntry{
			ID:        uuid.New().String(),
			TaskID:    input.TaskID,
			UserID:    input.UserID,
			Date:      input.Date,
			Hours:     input.Hours,
			Note:      input.Note,
			CreatedAt: time.Now(),
		}
		if err := store.TimeEntries().Create(ctx, entry); err != nil {
			return err
		}
		entry, err = store.TimeEntries().GetByID(ctx, entry.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteTimeEntry removes a time entry.
func (s *Service) DeleteTimeEntry(ctx context.Context, id string) error {
	entry, err := s.store.TimeEntries().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return newNotFoundError("time entry", id)
	}
	return s.store.TimeEntries().Delete(ctx, id)
}

// GetTimeEntry returns a time entry by id.
func (s *Service) GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	entry, err := s.store.TimeEntries().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, newNotFoundError("time entry", id)
	}
	return entry, nil
}

// ListTimeEntries returns time entries matching the filter, newest first.
func (s *Service) ListTimeEntries(ctx context.Context, filter storage.TimeEntryFilter) ([]*models.TimeEntry, error) {
	return s.store.TimeEntries().List(ctx, filter)
}
