package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/timesheet/internal/models"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		t.Fatalf("bad date %q: %v", value, err)
	}
	return d
}

func datePtr(t *testing.T, value string) *time.Time {
	d := mustDate(t, value)
	return &d
}

func createTestUser(t *testing.T, store *SQLiteStorage, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestClient(t *testing.T, store *SQLiteStorage, name string) *models.Client {
	t.Helper()
	client := &models.Client{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := store.Clients().Create(context.Background(), client); err != nil {
		t.Fatalf("failed to create client %s: %v", name, err)
	}
	return client
}

func createTestProject(t *testing.T, store *SQLiteStorage, clientID, name string) *models.Project {
	t.Helper()
	project := &models.Project{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Name:      name,
		Status:    models.ProjectActive,
		CreatedAt: time.Now(),
	}
	if err := store.Projects().Create(context.Background(), project); err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

func createTestTask(t *testing.T, store *SQLiteStorage, projectID, title string) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		Status:    models.TaskTodo,
		CreatedAt: time.Now(),
	}
	if err := store.Tasks().Create(context.Background(), task); err != nil {
		t.Fatalf("failed to create task %s: %v", title, err)
	}
	return task
}

func createTestEntry(t *testing.T, store *SQLiteStorage, taskID, userID, date, hours string) *models.TimeEntry {
	t.Helper()
	entry := &models.TimeEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    userID,
		Date:      mustDate(t, date),
		Hours:     decimal.RequireFromString(hours),
		CreatedAt: time.Now(),
	}
	if err := store.TimeEntries().Create(context.Background(), entry); err != nil {
		t.Fatalf("failed to create time entry: %v", err)
	}
	return entry
}

func TestUserRepository(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	user := createTestUser(t, store, "alice", models.RoleMember)

	got, err := store.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil || got.Username != "alice" {
		t.Fatalf("expected alice, got %+v", got)
	}

	got, err = store.Users().GetByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected case-insensitive email lookup to find user")
	}

	got.Role = models.RoleManager
	if err := store.Users().Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ = store.Users().GetByID(ctx, user.ID)
	if got.Role != models.RoleManager {
		t.Errorf("expected role manager, got %s", got.Role)
	}

	dup := &models.User{
		ID: uuid.New().String(), Username: "alice", Email: "other@example.com",
		PasswordHash: "hash", Role: models.RoleMember,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	err = store.Users().Create(ctx, dup)
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) {
		t.Errorf("expected ConstraintError for duplicate username, got %v", err)
	}
}

func TestClientRepository(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME Corp")

	got, err := store.Clients().GetByName(ctx, "ACME Corp")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got == nil || got.ID != client.ID {
		t.Fatalf("expected client %s, got %+v", client.ID, got)
	}

	dup := &models.Client{ID: uuid.New().String(), Name: "ACME Corp", CreatedAt: time.Now()}
	err = store.Clients().Create(ctx, dup)
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) {
		t.Errorf("expected ConstraintError for duplicate client name, got %v", err)
	}

	createTestClient(t, store, "Beta LLC")
	clients, err := store.Clients().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(clients) != 2 || clients[0].Name != "ACME Corp" {
		t.Errorf("expected name-ordered list, got %d clients", len(clients))
	}
}

func TestProjectRepositoryUniqueName(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	other := createTestClient(t, store, "Beta")
	createTestProject(t, store, client.ID, "Website")

	// Same name under a different client is fine.
	createTestProject(t, store, other.ID, "Website")

	// Case-only difference under the same client violates the unique index.
	dup := &models.Project{
		ID: uuid.New().String(), ClientID: client.ID, Name: "WEBSITE",
		Status: models.ProjectActive, CreatedAt: time.Now(),
	}
	err := store.Projects().Create(ctx, dup)
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) {
		t.Errorf("expected ConstraintError for case-insensitive duplicate, got %v", err)
	}

	found, err := store.Projects().FindByName(ctx, client.ID, "website")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if found == nil || found.Name != "Website" {
		t.Fatalf("expected case-insensitive lookup to find Website, got %+v", found)
	}
}

func TestProjectMembers(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	project := createTestProject(t, store, client.ID, "Website")
	user := createTestUser(t, store, "bob", models.RoleMember)

	if err := store.Projects().AddMember(ctx, project.ID, user.ID); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// Adding again is a no-op.
	if err := store.Projects().AddMember(ctx, project.ID, user.ID); err != nil {
		t.Fatalf("repeated AddMember failed: %v", err)
	}

	isMember, err := store.Projects().IsMember(ctx, project.ID, user.ID)
	if err != nil || !isMember {
		t.Fatalf("expected membership, got %v err=%v", isMember, err)
	}

	members, err := store.Projects().GetMembers(ctx, project.ID)
	if err != nil || len(members) != 1 {
		t.Fatalf("expected 1 member, got %d err=%v", len(members), err)
	}

	got, err := store.Projects().GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != user.ID {
		t.Errorf("expected MemberIDs to be populated, got %v", got.MemberIDs)
	}

	removed, err := store.Projects().RemoveMember(ctx, project.ID, user.ID)
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 row removed, got %d err=%v", removed, err)
	}
	removed, err = store.Projects().RemoveMember(ctx, project.ID, user.ID)
	if err != nil || removed != 0 {
		t.Fatalf("removing non-member should be a no-op, got %d err=%v", removed, err)
	}
}

func TestProjectList(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	acme := createTestClient(t, store, "ACME")
	beta := createTestClient(t, store, "Beta")
	website := createTestProject(t, store, acme.ID, "Website")
	createTestProject(t, store, beta.ID, "App")
	user := createTestUser(t, store, "carol", models.RoleMember)
	if err := store.Projects().AddMember(ctx, website.ID, user.ID); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	all, err := store.Projects().List(ctx, ProjectFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 projects, got %d err=%v", len(all), err)
	}
	// Ordered by client name, then project name.
	if all[0].Name != "Website" || all[1].Name != "App" {
		t.Errorf("unexpected order: %s, %s", all[0].Name, all[1].Name)
	}

	byClient, err := store.Projects().List(ctx, ProjectFilter{ClientID: beta.ID})
	if err != nil || len(byClient) != 1 || byClient[0].Name != "App" {
		t.Fatalf("client filter failed: %v", err)
	}

	byMember, err := store.Projects().List(ctx, ProjectFilter{MemberID: user.ID})
	if err != nil || len(byMember) != 1 || byMember[0].ID != website.ID {
		t.Fatalf("member filter failed: %v", err)
	}

	bySearch, err := store.Projects().List(ctx, ProjectFilter{Search: "web"})
	if err != nil || len(bySearch) != 1 {
		t.Fatalf("search filter failed: got %d err=%v", len(bySearch), err)
	}
}

func TestTaskRepository(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	project := createTestProject(t, store, client.ID, "Website")
	user := createTestUser(t, store, "dave", models.RoleMember)

	task := &models.Task{
		ID:            uuid.New().String(),
		ProjectID:     project.ID,
		Title:         "Build homepage",
		AssigneeID:    user.ID,
		Status:        models.TaskTodo,
		EstimateHours: decimal.RequireFromString("8.5"),
		DueDate:       datePtr(t, "2026-09-15"),
		CreatedAt:     time.Now(),
	}
	if err := store.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AssigneeUsername != "dave" {
		t.Errorf("expected assignee username dave, got %q", got.AssigneeUsername)
	}
	if !got.EstimateHours.Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("expected estimate 8.5, got %s", got.EstimateHours)
	}
	if got.DueDate == nil || got.DueDate.Format(dateLayout) != "2026-09-15" {
		t.Errorf("unexpected due date: %v", got.DueDate)
	}
	if got.ProjectName != "Website" || got.ClientName != "ACME" {
		t.Errorf("expected joined names, got %q / %q", got.ProjectName, got.ClientName)
	}

	if err := store.Tasks().UpdateAssignee(ctx, task.ID, ""); err != nil {
		t.Fatalf("UpdateAssignee failed: %v", err)
	}
	got, _ = store.Tasks().GetByID(ctx, task.ID)
	if got.AssigneeID != "" {
		t.Errorf("expected cleared assignee, got %q", got.AssigneeID)
	}
}

func TestTaskListFilters(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	project := createTestProject(t, store, client.ID, "Website")
	user := createTestUser(t, store, "erin", models.RoleMember)

	overdue := &models.Task{
		ID: uuid.New().String(), ProjectID: project.ID, Title: "Late task",
		AssigneeID: user.ID, Status: models.TaskInProgress,
		DueDate: datePtr(t, "2026-01-10"), CreatedAt: time.Now(),
	}
	if err := store.Tasks().Create(ctx, overdue); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	doneLate := &models.Task{
		ID: uuid.New().String(), ProjectID: project.ID, Title: "Finished task",
		Status: models.TaskDone, DueDate: datePtr(t, "2026-01-10"), CreatedAt: time.Now(),
	}
	if err := store.Tasks().Create(ctx, doneLate); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	createTestTask(t, store, project.ID, "Open task")

	today := mustDate(t, "2026-02-01")
	got, err := store.Tasks().List(ctx, TaskFilter{OverdueOn: &today})
	if err != nil || len(got) != 1 || got[0].Title != "Late task" {
		t.Fatalf("overdue filter: expected only Late task, got %d err=%v", len(got), err)
	}

	hasAssignee := false
	got, err = store.Tasks().List(ctx, TaskFilter{HasAssignee: &hasAssignee})
	if err != nil || len(got) != 2 {
		t.Fatalf("unassigned filter: expected 2, got %d err=%v", len(got), err)
	}

	got, err = store.Tasks().List(ctx, TaskFilter{Status: models.TaskDone})
	if err != nil || len(got) != 1 {
		t.Fatalf("status filter: expected 1, got %d err=%v", len(got), err)
	}

	got, err = store.Tasks().List(ctx, TaskFilter{Search: "late"})
	if err != nil || len(got) != 1 {
		t.Fatalf("search filter: expected 1, got %d err=%v", len(got), err)
	}
}

func TestTimeEntryRepository(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	project := createTestProject(t, store, client.ID, "Website")
	task := createTestTask(t, store, project.ID, "Build homepage")
	user := createTestUser(t, store, "frank", models.RoleMember)

	createTestEntry(t, store, task.ID, user.ID, "2026-03-01", "2.5")
	createTestEntry(t, store, task.ID, user.ID, "2026-03-05", "4")
	createTestEntry(t, store, task.ID, user.ID, "2026-03-10", "1.25")

	all, err := store.TimeEntries().List(ctx, TimeEntryFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d err=%v", len(all), err)
	}
	// Newest date first.
	if all[0].Date.Format(dateLayout) != "2026-03-10" {
		t.Errorf("expected newest first, got %s", all[0].Date.Format(dateLayout))
	}
	if all[0].TaskTitle != "Build homepage" || all[0].Username != "frank" {
		t.Errorf("expected joined fields, got %+v", all[0])
	}

	from := mustDate(t, "2026-03-05")
	to := mustDate(t, "2026-03-05")
	ranged, err := store.TimeEntries().List(ctx, TimeEntryFilter{From: &from, To: &to})
	if err != nil || len(ranged) != 1 {
		t.Fatalf("inclusive range filter: expected 1, got %d err=%v", len(ranged), err)
	}
	if !ranged[0].Hours.Equal(decimal.RequireFromString("4")) {
		t.Errorf("expected 4 hours, got %s", ranged[0].Hours)
	}

	byProject, err := store.TimeEntries().List(ctx, TimeEntryFilter{ProjectID: project.ID})
	if err != nil || len(byProject) != 3 {
		t.Fatalf("project filter: expected 3, got %d err=%v", len(byProject), err)
	}
	byClient, err := store.TimeEntries().List(ctx, TimeEntryFilter{ClientID: client.ID})
	if err != nil || len(byClient) != 3 {
		t.Fatalf("client filter: expected 3, got %d err=%v", len(byClient), err)
	}

	if err := store.TimeEntries().Delete(ctx, all[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.TimeEntries().Delete(ctx, all[0].ID); err == nil {
		t.Error("expected error deleting missing entry")
	}
}

func TestCascadeDeletes(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	project := createTestProject(t, store, client.ID, "Website")
	task := createTestTask(t, store, project.ID, "Build homepage")
	user := createTestUser(t, store, "grace", models.RoleMember)
	entry := createTestEntry(t, store, task.ID, user.ID, "2026-03-01", "2")

	if err := store.Clients().Delete(ctx, client.ID); err != nil {
		t.Fatalf("Delete client failed: %v", err)
	}
	if got, _ := store.Projects().GetByID(ctx, project.ID); got != nil {
		t.Error("expected project cascade delete")
	}
	if got, _ := store.Tasks().GetByID(ctx, task.ID); got != nil {
		t.Error("expected task cascade delete")
	}
	if got, _ := store.TimeEntries().GetByID(ctx, entry.ID); got != nil {
		t.Error("expected time entry cascade delete")
	}
}

func TestUserDeleteSideEffects(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	project := createTestProject(t, store, client.ID, "Website")
	user := createTestUser(t, store, "henry", models.RoleMember)

	task := &models.Task{
		ID: uuid.New().String(), ProjectID: project.ID, Title: "Assigned task",
		AssigneeID: user.ID, Status: models.TaskTodo, CreatedAt: time.Now(),
	}
	if err := store.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("Create task failed: %v", err)
	}
	entry := createTestEntry(t, store, task.ID, user.ID, "2026-03-01", "3")

	if err := store.Users().Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete user failed: %v", err)
	}

	got, err := store.Tasks().GetByID(ctx, task.ID)
	if err != nil || got == nil {
		t.Fatalf("task should survive user delete: %v", err)
	}
	if got.AssigneeID != "" {
		t.Errorf("expected assignee cleared, got %q", got.AssigneeID)
	}
	if gotEntry, _ := store.TimeEntries().GetByID(ctx, entry.ID); gotEntry != nil {
		t.Error("expected time entries removed with user")
	}
}

func TestClearAssigneeForUser(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	projectA := createTestProject(t, store, client.ID, "Website")
	projectB := createTestProject(t, store, client.ID, "App")
	user := createTestUser(t, store, "iris", models.RoleMember)

	for _, pid := range []string{projectA.ID, projectA.ID, projectB.ID} {
		task := &models.Task{
			ID: uuid.New().String(), ProjectID: pid, Title: "Task",
			AssigneeID: user.ID, Status: models.TaskTodo, CreatedAt: time.Now(),
		}
		if err := store.Tasks().Create(ctx, task); err != nil {
			t.Fatalf("Create task failed: %v", err)
		}
	}

	cleared, err := store.Tasks().ClearAssigneeForUser(ctx, projectA.ID, user.ID)
	if err != nil || cleared != 2 {
		t.Fatalf("expected 2 tasks cleared, got %d err=%v", cleared, err)
	}

	remaining, err := store.Tasks().List(ctx, TaskFilter{AssigneeID: user.ID})
	if err != nil || len(remaining) != 1 || remaining[0].ProjectID != projectB.ID {
		t.Fatalf("expected 1 task still assigned in other project, got %d err=%v", len(remaining), err)
	}
}

func TestWithTxRollback(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")

	wantErr := errors.New("boom")
	err := store.WithTx(ctx, func(s Store) error {
		project := &models.Project{
			ID: uuid.New().String(), ClientID: client.ID, Name: "Website",
			Status: models.ProjectActive, CreatedAt: time.Now(),
		}
		if err := s.Projects().Create(ctx, project); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected boom, got %v", err)
	}

	projects, err := store.Projects().List(ctx, ProjectFilter{})
	if err != nil || len(projects) != 0 {
		t.Fatalf("expected rollback to discard project, got %d err=%v", len(projects), err)
	}
}

func TestReports(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	client := createTestClient(t, store, "ACME")
	website := createTestProject(t, store, client.ID, "Website")
	app := createTestProject(t, store, client.ID, "App")
	webTask := createTestTask(t, store, website.ID, "Web work")
	appTask := createTestTask(t, store, app.ID, "App work")
	alice := createTestUser(t, store, "alice", models.RoleMember)
	bob := createTestUser(t, store, "bob", models.RoleMember)

	createTestEntry(t, store, webTask.ID, alice.ID, "2026-03-01", "2.5")
	createTestEntry(t, store, webTask.ID, bob.ID, "2026-03-02", "1.25")
	createTestEntry(t, store, appTask.ID, alice.ID, "2026-03-03", "8")

	byProject, err := store.Reports().HoursByProject(ctx, nil, nil)
	if err != nil {
		t.Fatalf("HoursByProject failed: %v", err)
	}
	if len(byProject) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(byProject))
	}
	if byProject[0].ProjectName != "App" || !byProject[0].TotalHours.Equal(decimal.RequireFromString("8")) {
		t.Errorf("expected App with 8 hours first, got %s %s", byProject[0].ProjectName, byProject[0].TotalHours)
	}
	if byProject[1].ProjectName != "Website" || !byProject[1].TotalHours.Equal(decimal.RequireFromString("3.75")) {
		t.Errorf("expected Website with 3.75 hours, got %s %s", byProject[1].ProjectName, byProject[1].TotalHours)
	}

	from := mustDate(t, "2026-03-02")
	ranged, err := store.Reports().HoursByProject(ctx, &from, nil)
	if err != nil {
		t.Fatalf("HoursByProject with range failed: %v", err)
	}
	if len(ranged) != 2 || !ranged[1].TotalHours.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("range filter: expected Website total 1.25, got %+v", ranged)
	}

	byUser, err := store.Reports().HoursByUser(ctx, nil, nil)
	if err != nil {
		t.Fatalf("HoursByUser failed: %v", err)
	}
	if len(byUser) != 2 || byUser[0].Username != "alice" || !byUser[0].TotalHours.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("expected alice with 10.5 hours first, got %+v", byUser)
	}

	counts, err := store.Reports().TaskCountsByStatus(ctx, "")
	if err != nil {
		t.Fatalf("TaskCountsByStatus failed: %v", err)
	}
	if len(counts) != 1 || counts[0].Status != models.TaskTodo || counts[0].Count != 2 {
		t.Errorf("expected 2 todo tasks, got %+v", counts)
	}

	webOnly, err := store.Reports().TaskCountsByStatus(ctx, website.ID)
	if err != nil || len(webOnly) != 1 || webOnly[0].Count != 1 {
		t.Errorf("project-scoped counts: expected 1 todo, got %+v err=%v", webOnly, err)
	}
}

func TestTokenRepository(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	user := createTestUser(t, store, "jane", models.RoleMember)

	token, raw, err := models.NewRefreshToken(user.ID, time.Hour)
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	if err := store.Tokens().Create(ctx, token); err != nil {
		t.Fatalf("Create token failed: %v", err)
	}

	got, err := store.Tokens().GetByTokenHash(ctx, models.HashToken(raw))
	if err != nil || got == nil {
		t.Fatalf("GetByTokenHash failed: %v", err)
	}
	if !got.IsValid() {
		t.Error("expected token to be valid")
	}

	if err := store.Tokens().RevokeByTokenHash(ctx, got.TokenHash); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	got, _ = store.Tokens().GetByTokenHash(ctx, models.HashToken(raw))
	if got.IsValid() {
		t.Error("expected revoked token to be invalid")
	}

	expired := &models.RefreshToken{
		ID: uuid.New().String(), UserID: user.ID, TokenHash: "stale",
		ExpiresAt: time.Now().Add(-time.Hour), CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	if err := store.Tokens().Create(ctx, expired); err != nil {
		t.Fatalf("Create expired token failed: %v", err)
	}
	deleted, err := store.Tokens().DeleteExpired(ctx)
	if err != nil || deleted != 1 {
		t.Fatalf("expected 1 expired token deleted, got %d err=%v", deleted, err)
	}
}
