package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

type sqliteProjectRepo struct {
	q querier
}

const projectColumns = `
	p.id, p.client_id, c.name, p.name, p.description,
	p.start_date, p.deadline, p.status, p.created_at
`

func (r *sqliteProjectRepo) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, client_id, name, description, start_date, deadline, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		project.ID, project.ClientID, project.Name, project.Description,
		dateArg(project.StartDate), dateArg(project.Deadline),
		project.Status, project.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert project", err)
	}
	return nil
}

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	project := &models.Project{}
	var description sql.NullString
	var startDate, deadline sql.NullString
	err := row.Scan(
		&project.ID, &project.ClientID, &project.ClientName, &project.Name, &description,
		&startDate, &deadline, &project.Status, &project.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.Description = description.String
	if project.StartDate, err = scanDate(startDate); err != nil {
		return nil, err
	}
	if project.Deadline, err = scanDate(deadline); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *sqliteProjectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		INNER JOIN clients c ON p.client_id = c.id
		WHERE p.id = ?
	`
	project, err := scanProject(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project by id: %w", err)
	}
	if err := r.loadMemberIDs(ctx, []*models.Project{project}); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *sqliteProjectRepo) FindByName(ctx context.Context, clientID, name string) (*models.Project, error) {
	// The name column carries NOCASE collation, so equality here is
	// case-insensitive.
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		INNER JOIN clients c ON p.client_id = c.id
		WHERE p.client_id = ? AND p.name = ?
	`
	project, err := scanProject(r.q.QueryRowContext(ctx, query, clientID, strings.TrimSpace(name)))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by name: %w", err)
	}
	return project, nil
}

func (r *sqliteProjectRepo) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET name = ?, description = ?, start_date = ?, deadline = ?, status = ?
		WHERE id = ?
	`
	result, err := r.q.ExecContext(ctx, query,
		project.Name, project.Description,
		dateArg(project.StartDate), dateArg(project.Deadline), project.Status,
		project.ID,
	)
	if err != nil {
		return wrapErr("update project", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project not found: %s", project.ID)
	}
	return nil
}

func (r *sqliteProjectRepo) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

func (r *sqliteProjectRepo) List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		INNER JOIN clients c ON p.client_id = c.id
	`
	var conds []string
	var args []any

	if filter.ClientID != "" {
		conds = append(conds, "p.client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, filter.Status)
	}
	if filter.MemberID != "" {
		conds = append(conds, "p.id IN (SELECT project_id FROM project_members WHERE user_id = ?)")
		args = append(args, filter.MemberID)
	}
	if filter.Search != "" {
		conds = append(conds, "(p.name LIKE ? OR c.name LIKE ?)")
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.name, p.name"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadMemberIDs(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// loadMemberIDs populates MemberIDs for the given projects in one query.
func (r *sqliteProjectRepo) loadMemberIDs(ctx context.Context, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	byID := make(map[string]*models.Project, len(projects))
	placeholders := make([]string, len(projects))
	args := make([]any, len(projects))
	for i, p := range projects {
		byID[p.ID] = p
		placeholders[i] = "?"
		args[i] = p.ID
	}

	query := `
		SELECT pm.project_id, pm.user_id
		FROM project_members pm
		INNER JOIN users u ON pm.user_id = u.id
		WHERE pm.project_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY u.username
	`
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load project members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, userID string
		if err := rows.Scan(&projectID, &userID); err != nil {
			return fmt.Errorf("scan project member: %w", err)
		}
		if p, ok := byID[projectID]; ok {
			p.MemberIDs = append(p.MemberIDs, userID)
		}
	}
	return rows.Err()
}

func (r *sqliteProjectRepo) AddMember(ctx context.Context, projectID, userID string) error {
	// INSERT OR IGNORE gives the membership set idempotent add semantics.
	query := `
		INSERT OR IGNORE INTO project_members (project_id, user_id)
		VALUES (?, ?)
	`
	_, err := r.q.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		return wrapErr("add project member", err)
	}
	return nil
}

func (r *sqliteProjectRepo) RemoveMember(ctx context.Context, projectID, userID string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		"DELETE FROM project_members WHERE project_id = ? AND user_id = ?",
		projectID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("remove project member: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *sqliteProjectRepo) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM project_members WHERE project_id = ? AND user_id = ?",
		projectID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check project membership: %w", err)
	}
	return count > 0, nil
}

func (r *sqliteProjectRepo) GetMembers(ctx context.Context, projectID string) ([]*models.ProjectMember, error) {
	query := `
		SELECT pm.project_id, u.id, u.username, u.email
		FROM users u
		INNER JOIN project_members pm ON u.id = pm.user_id
		WHERE pm.project_id = ?
		ORDER BY u.username
	`
	rows, err := r.q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project members: %w", err)
	}
	defer rows.Close()

	var members []*models.ProjectMember
	for rows.Next() {
		member := &models.ProjectMember{}
		err := rows.Scan(&member.ProjectID, &member.UserID, &member.Username, &member.Email)
		if err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *sqliteProjectRepo) GetProjectsForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		INNER JOIN clients c ON p.client_id = c.id
		INNER JOIN project_members pm ON p.id = pm.project_id
		WHERE pm.user_id = ?
		ORDER BY c.name, p.name
	`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get user projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadMemberIDs(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}
