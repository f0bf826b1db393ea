package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

type sqliteReportRepo struct {
	q querier
}

func dateRangeConds(from, to *time.Time) (conds []string, args []any) {
	if from != nil {
		conds = append(conds, "te.date >= ?")
		args = append(args, from.Format(dateLayout))
	}
	if to != nil {
		conds = append(conds, "te.date <= ?")
		args = append(args, to.Format(dateLayout))
	}
	return conds, args
}

func (r *sqliteReportRepo) HoursByProject(ctx context.Context, from, to *time.Time) ([]*models.ProjectHours, error) {
	defer timeQuery("hours_by_project", time.Now())
	query := `
		SELECT p.id, p.name, c.name, COALESCE(SUM(te.hours), 0)
		FROM time_entries te
		INNER JOIN tasks t ON te.task_id = t.id
		INNER JOIN projects p ON t.project_id = p.id
		INNER JOIN clients c ON p.client_id = c.id
	`
	conds, args := dateRangeConds(from, to)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += `
		GROUP BY p.id, p.name, c.name
		ORDER BY SUM(te.hours) DESC, c.name, p.name
	`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("hours by project: %w", err)
	}
	defer rows.Close()

	var report []*models.ProjectHours
	for rows.Next() {
		row := &models.ProjectHours{}
		if err := rows.Scan(&row.ProjectID, &row.ProjectName, &row.ClientName, &row.TotalHours); err != nil {
			return nil, fmt.Errorf("scan project hours: %w", err)
		}
		row.TotalHours = row.TotalHours.Round(2)
		report = append(report, row)
	}
	return report, rows.Err()
}

func (r *sqliteReportRepo) HoursByUser(ctx context.Context, from, to *time.Time) ([]*models.UserHours, error) {
	defer timeQuery("hours_by_user", time.Now())
	query := `
		SELECT u.id, u.username, COALESCE(SUM(te.hours), 0)
		FROM time_entries te
		INNER JOIN users u ON te.user_id = u.id
	`
	conds, args := dateRangeConds(from, to)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += `
		GROUP BY u.id, u.username
		ORDER BY SUM(te.hours) DESC, u.username
	`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("hours by user: %w", err)
	}
	defer rows.Close()

	var report []*models.UserHours
	for rows.Next() {
		row := &models.UserHours{}
		if err := rows.Scan(&row.UserID, &row.Username, &row.TotalHours); err != nil {
			return nil, fmt.Errorf("scan user hours: %w", err)
		}
		row.TotalHours = row.TotalHours.Round(2)
		report = append(report, row)
	}
	return report, rows.Err()
}

func (r *sqliteReportRepo) TaskCountsByStatus(ctx context.Context, projectID string) ([]*models.TaskStatusCount, error) {
	defer timeQuery("task_counts_by_status", time.Now())
	query := "SELECT status, COUNT(*) FROM tasks"
	var args []any
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " GROUP BY status ORDER BY status"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("task counts by status: %w", err)
	}
	defer rows.Close()

	var counts []*models.TaskStatusCount
	for rows.Next() {
		row := &models.TaskStatusCount{}
		if err := rows.Scan(&row.Status, &row.Count); err != nil {
			return nil, fmt.Errorf("scan task status count: %w", err)
		}
		counts = append(counts, row)
	}
	return counts, rows.Err()
}
