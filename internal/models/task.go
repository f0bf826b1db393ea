package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// ValidTaskStatus returns true if s is a known task status.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Task represents a unit of work within a project, optionally assigned to
// a project member. If the assignee is deleted the assignee field is
// cleared rather than deleting the task.
type Task struct {
	ID               string          `json:"id"`
	ProjectID        string          `json:"project_id"`
	ProjectName      string          `json:"project_name,omitempty"`
	ClientName       string          `json:"client_name,omitempty"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	AssigneeID       string          `json:"assignee_id,omitempty"`
	AssigneeUsername string          `json:"assignee_username,omitempty"`
	Status           TaskStatus      `json:"status"`
	EstimateHours    decimal.Decimal `json:"estimate_hours"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
