package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry records hours worked by a user on a task on a specific date.
// Hours are always positive and the work date is never in the future at
// creation time.
type TimeEntry struct {
	ID          string          `json:"id"`
	TaskID      string          `json:"task_id"`
	TaskTitle   string          `json:"task_title,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	ProjectName string          `json:"project_name,omitempty"`
	ClientName  string          `json:"client_name,omitempty"`
	UserID      string          `json:"user_id"`
	Username    string          `json:"username,omitempty"`
	Date        time.Time       `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
