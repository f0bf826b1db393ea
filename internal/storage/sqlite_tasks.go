package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

type sqliteTaskRepo struct {
	q querier
}

const taskColumns = `
	t.id, t.project_id, p.name, c.name, t.title, t.description,
	t.assignee_id, u.username, t.status, t.estimate_hours, t.due_date, t.created_at
`

const taskJoins = `
	FROM tasks t
	INNER JOIN projects p ON t.project_id = p.id
	INNER JOIN clients c ON p.client_id = c.id
	LEFT JOIN users u ON t.assignee_id = u.id
`

func (r *sqliteTaskRepo) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, title, description, assignee_id, status, estimate_hours, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var assignee any
	if task.AssigneeID != "" {
		assignee = task.AssigneeID
	}
	_, err := r.q.ExecContext(ctx, query,
		task.ID, task.ProjectID, task.Title, task.Description, assignee,
		task.Status, task.EstimateHours.String(), dateArg(task.DueDate), task.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert task", err)
	}
	return nil
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	task := &models.Task{}
	var description, assigneeID, assigneeName sql.NullString
	var dueDate sql.NullString
	err := row.Scan(
		&task.ID, &task.ProjectID, &task.ProjectName, &task.ClientName,
		&task.Title, &description, &assigneeID, &assigneeName,
		&task.Status, &task.EstimateHours, &dueDate, &task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Description = description.String
	task.AssigneeID = assigneeID.String
	task.AssigneeUsername = assigneeName.String
	if task.DueDate, err = scanDate(dueDate); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *sqliteTaskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := "SELECT " + taskColumns + taskJoins + " WHERE t.id = ?"
	task, err := scanTask(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return task, nil
}

func (r *sqliteTaskRepo) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET title = ?, description = ?, status = ?, estimate_hours = ?, due_date = ?
		WHERE id = ?
	`
	result, err := r.q.ExecContext(ctx, query,
		task.Title, task.Description, task.Status,
		task.EstimateHours.String(), dateArg(task.DueDate),
		task.ID,
	)
	if err != nil {
		return wrapErr("update task", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}
	return nil
}

func (r *sqliteTaskRepo) UpdateAssignee(ctx context.Context, taskID, assigneeID string) error {
	var assignee any
	if assigneeID != "" {
		assignee = assigneeID
	}
	result, err := r.q.ExecContext(ctx,
		"UPDATE tasks SET assignee_id = ? WHERE id = ?",
		assignee, taskID,
	)
	if err != nil {
		return wrapErr("update task assignee", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task not found: %s", taskID)
	}
	return nil
}

func (r *sqliteTaskRepo) ClearAssigneeForUser(ctx context.Context, projectID, userID string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		"UPDATE tasks SET assignee_id = NULL WHERE project_id = ? AND assignee_id = ?",
		projectID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear task assignee: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *sqliteTaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

func (r *sqliteTaskRepo) List(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + taskJoins
	var conds []string
	var args []any

	if filter.ProjectID != "" {
		conds = append(conds, "t.project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.AssigneeID != "" {
		conds = append(conds, "t.assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.Status != "" {
		conds = append(conds, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.HasAssignee != nil {
		if *filter.HasAssignee {
			conds = append(conds, "t.assignee_id IS NOT NULL")
		} else {
			conds = append(conds, "t.assignee_id IS NULL")
		}
	}
	if filter.OverdueOn != nil {
		conds = append(conds, "t.due_date IS NOT NULL AND t.due_date < ? AND t.status != 'done'")
		args = append(args, filter.OverdueOn.Format(dateLayout))
	}
	if filter.Search != "" {
		conds = append(conds, "(t.title LIKE ? OR t.description LIKE ?)")
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
