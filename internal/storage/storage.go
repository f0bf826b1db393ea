// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

// Store groups the repository accessors. Domain services receive a Store
// bound to a transaction via Storage.WithTx; everything else reads through
// the Storage itself.
type Store interface {
	Users() UserRepository
	Clients() ClientRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	TimeEntries() TimeEntryRepository
	Tokens() TokenRepository
	Reports() ReportRepository
}

// Storage is the main interface for database operations.
type Storage interface {
	Store

	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error
	// EnsureAdminUser creates a default admin if no users exist.
	EnsureAdminUser() error
	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// WithTx runs fn inside a single transaction. The Store passed to fn is
	// bound to that transaction; if fn returns an error the transaction is
	// rolled back and no partial writes remain visible.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// ConstraintError is returned when the database rejects a write because of
// a uniqueness or foreign-key constraint. Services translate it into a
// domain validation error so pre-check races never leak internals.
type ConstraintError struct {
	Op  string
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: constraint violated: %v", e.Op, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// UserRepository defines operations for user management.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// ClientRepository defines operations for client management.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	GetByName(ctx context.Context, name string) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Client, error)
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	ClientID string
	Status   models.ProjectStatus
	MemberID string
	Search   string // matches project or client name, case-insensitive
}

// ProjectRepository defines operations for project management.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	// FindByName looks up a project by client and name, case-insensitively.
	FindByName(ctx context.Context, clientID, name string) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error)

	// AddMember adds a user to the membership set (set semantics, no-op if
	// already present).
	AddMember(ctx context.Context, projectID, userID string) error
	// RemoveMember removes a user from the membership set. Returns the
	// number of rows removed; removing a non-member is not an error.
	RemoveMember(ctx context.Context, projectID, userID string) (int64, error)
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
	GetMembers(ctx context.Context, projectID string) ([]*models.ProjectMember, error)
	GetProjectsForUser(ctx context.Context, userID string) ([]*models.Project, error)
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	ProjectID   string
	AssigneeID  string
	Status      models.TaskStatus
	HasAssignee *bool
	OverdueOn   *time.Time // due before this date and not done
	Search      string     // matches title or description, case-insensitive
}

// TaskRepository defines operations for task management.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	// UpdateAssignee persists only the assignee field. An empty assigneeID
	// clears the assignment.
	UpdateAssignee(ctx context.Context, taskID, assigneeID string) error
	// ClearAssigneeForUser clears the assignee on every task in the project
	// currently assigned to the user. Returns the number of tasks touched.
	ClearAssigneeForUser(ctx context.Context, projectID, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
}

// TimeEntryFilter narrows time entry listings. From/To bounds are inclusive.
type TimeEntryFilter struct {
	UserID    string
	TaskID    string
	ProjectID string
	ClientID  string
	From      *time.Time
	To        *time.Time
}

// TimeEntryRepository defines operations for logged work hours.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *models.TimeEntry) error
	GetByID(ctx context.Context, id string) (*models.TimeEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TimeEntryFilter) ([]*models.TimeEntry, error)
}

// TokenRepository defines operations for refresh token management.
type TokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ReportRepository defines the read-only aggregate queries.
type ReportRepository interface {
	// HoursByProject sums logged hours grouped by project, sorted by total
	// descending. From/To bounds are inclusive and optional.
	HoursByProject(ctx context.Context, from, to *time.Time) ([]*models.ProjectHours, error)
	// HoursByUser sums logged hours grouped by user.
	HoursByUser(ctx context.Context, from, to *time.Time) ([]*models.UserHours, error)
	// TaskCountsByStatus counts tasks grouped by status, ordered by status
	// name. projectID optionally restricts to one project.
	TaskCountsByStatus(ctx context.Context, projectID string) ([]*models.TaskStatusCount, error)
}
