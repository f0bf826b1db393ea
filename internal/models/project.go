package models

import (
	"time"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

// ValidProjectStatus returns true if s is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// Project represents a unit of work for a client, with a status and a
// member set. The (client, name) pair is unique case-insensitively.
type Project struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	Status      ProjectStatus `json:"status"`
	MemberIDs   []string      `json:"member_ids,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ProjectMember represents a user's membership in a project.
type ProjectMember struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}
