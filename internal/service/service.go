// Package service implements the domain operations on top of storage:
// validation, permission checks and transactional writes.
package service

import (
	"time"

	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// Service exposes the domain operations. All write paths validate input,
// check permissions and run inside a storage transaction.
type Service struct {
	store storage.Storage

	// now supplies the current time so date rules stay testable.
	now func() time.Time
}

// New creates a Service backed by the given storage.
func New(store storage.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

func newWithClock(store storage.Storage, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

// today returns the current date truncated to day precision.
func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
