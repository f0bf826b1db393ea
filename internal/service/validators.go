package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// checkMembership fails when userID is set and not a member of the project.
func checkMembership(ctx context.Context, store storage.Store, projectID, userID, field string) error {
	if userID == "" {
		return nil
	}
	isMember, err := store.Projects().IsMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return newValidationError(field, "user is not a member of the project")
	}
	return nil
}

// checkUniqueProjectName fails when another project of the same client
// already carries the name, comparing case-insensitively. excludeID skips
// the project being updated.
func checkUniqueProjectName(ctx context.Context, store storage.Store, clientID, name, excludeID string) error {
	existing, err := store.Projects().FindByName(ctx, clientID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return newValidationError("name", "a project with this name already exists for the client")
	}
	return nil
}

// checkDateOrder fails when both dates are set and the start date falls
// after the deadline.
func checkDateOrder(startDate, deadline *time.Time) error {
	if startDate != nil && deadline != nil && startDate.After(*deadline) {
		return newValidationError("start_date", "start date must not be after the deadline")
	}
	return nil
}

// checkTimeEntry fails on non-positive hours or a work date after today.
// Today is evaluated against the service clock, never the caller's.
func checkTimeEntry(date time.Time, hours decimal.Decimal, today time.Time) error {
	if hours.LessThanOrEqual(decimal.Zero) {
		return newValidationError("hours", "hours must be greater than zero")
	}
	if date.After(today) {
		return newValidationError("date", "date must not be in the future")
	}
	return nil
}

func trimmedName(name, field string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", newValidationError(field, "is required")
	}
	return trimmed, nil
}
