package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

type sqliteTimeEntryRepo struct {
	q querier
}

const timeEntryColumns = `
	te.id, te.task_id, t.title, p.id, p.name, c.name,
	te.user_id, u.username, te.date, te.hours, te.note, te.created_at
`

const timeEntryJoins = `
	FROM time_entries te
	INNER JOIN tasks t ON te.task_id = t.id
	INNER JOIN projects p ON t.project_id = p.id
	INNER JOIN clients c ON p.client_id = c.id
	INNER JOIN users u ON te.user_id = u.id
`

func (r *sqliteTimeEntryRepo) Create(ctx context.Context, entry *models.TimeEntry) error {
	query := `
		INSERT INTO time_entries (id, task_id, user_id, date, hours, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		entry.ID, entry.TaskID, entry.UserID,
		entry.Date.Format(dateLayout), entry.Hours.String(), entry.Note,
		entry.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert time entry", err)
	}
	return nil
}

func scanTimeEntry(row interface{ Scan(...any) error }) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{}
	var note sql.NullString
	var date string
	err := row.Scan(
		&entry.ID, &entry.TaskID, &entry.TaskTitle,
		&entry.ProjectID, &entry.ProjectName, &entry.ClientName,
		&entry.UserID, &entry.Username, &date, &entry.Hours, &note, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Note = note.String
	if entry.Date, err = scanRequiredDate(date); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *sqliteTimeEntryRepo) GetByID(ctx context.Context, id string) (*models.TimeEntry, error) {
	query := "SELECT " + timeEntryColumns + timeEntryJoins + " WHERE te.id = ?"
	entry, err := scanTimeEntry(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get time entry by id: %w", err)
	}
	return entry, nil
}

func (r *sqliteTimeEntryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("time entry not found: %s", id)
	}
	return nil
}

func (r *sqliteTimeEntryRepo) List(ctx context.Context, filter TimeEntryFilter) ([]*models.TimeEntry, error) {
	query := "SELECT " + timeEntryColumns + timeEntryJoins
	var conds []string
	var args []any

	if filter.UserID != "" {
		conds = append(conds, "te.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.TaskID != "" {
		conds = append(conds, "te.task_id = ?")
		args = append(args, filter.TaskID)
	}
	if filter.ProjectID != "" {
		conds = append(conds, "p.id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.ClientID != "" {
		conds = append(conds, "c.id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.From != nil {
		conds = append(conds, "te.date >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		conds = append(conds, "te.date <= ?")
		args = append(args, filter.To.Format(dateLayout))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY te.date DESC, te.created_at DESC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
