package models

import (
	"github.com/shopspring/decimal"
)

// ProjectHours is one row of the hours-by-project report.
type ProjectHours struct {
	ProjectID   string          `json:"project_id"`
	ProjectName string          `json:"project_name"`
	ClientName  string          `json:"client_name"`
	TotalHours  decimal.Decimal `json:"total_hours"`
}

// UserHours is one row of the hours-by-user report.
type UserHours struct {
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	TotalHours decimal.Decimal `json:"total_hours"`
}

// TaskStatusCount is one row of the task-counts-by-status report.
type TaskStatusCount struct {
	Status TaskStatus `json:"status"`
	Count  int64      `json:"count"`
}
