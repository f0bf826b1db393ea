package service

import (
	"context"
	"time"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

// HoursByProject sums logged hours per project, highest total first.
// From/To bounds are inclusive and optional.
func (s *Service) HoursByProject(ctx context.Context, from, to *time.Time) ([]*models.ProjectHours, error) {
	return s.store.Reports().HoursByProject(ctx, from, to)
}

// HoursByUser sums logged hours per user, highest total first.
func (s *Service) HoursByUser(ctx context.Context, from, to *time.Time) ([]*models.UserHours, error) {
	return s.store.Reports().HoursByUser(ctx, from, to)
}

// TaskCountsByStatus counts tasks per status, optionally scoped to one
// project, ordered by status name.
func (s *Service) TaskCountsByStatus(ctx context.Context, projectID string) ([]*models.TaskStatusCount, error) {
	return s.store.Reports().TaskCountsByStatus(ctx, projectID)
}
