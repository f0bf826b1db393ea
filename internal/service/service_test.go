package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// testNow is the fixed clock used by every test service.
var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := storage.NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return newWithClock(store, func() time.Time { return testNow }), store
}

func createUser(t *testing.T, store *storage.SQLiteStorage, username string) *models.User {
	t.Helper()
	user := models.NewUser(username, username+"@example.com", models.RoleMember)
	user.ID = uuid.New().String()
	user.PasswordHash = "hash"
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func mustCreateClient(t *testing.T, svc *Service, name string) *models.Client {
	t.Helper()
	client, err := svc.CreateClient(context.Background(), CreateClientInput{Name: name})
	if err != nil {
		t.Fatalf("failed to create client %s: %v", name, err)
	}
	return client
}

func mustCreateProject(t *testing.T, svc *Service, clientID, name string) *models.Project {
	t.Helper()
	project, err := svc.CreateProject(context.Background(), CreateProjectInput{ClientID: clientID, Name: name})
	if err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

func date(t *testing.T, value string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("bad date %q: %v", value, err)
	}
	return &d
}

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields[field]; !ok {
		t.Fatalf("expected error on field %q, got %v", field, validationErr.Fields)
	}
}

func TestCreateClientDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreateClient(t, svc, "ACME")
	_, err := svc.CreateClient(ctx, CreateClientInput{Name: "ACME"})
	assertValidationError(t, err, "name")

	_, err = svc.CreateClient(ctx, CreateClientInput{Name: "   "})
	assertValidationError(t, err, "name")
}

func TestCreateProjectUniqueNamePerClient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	acme := mustCreateClient(t, svc, "ACME")
	beta := mustCreateClient(t, svc, "Beta")
	mustCreateProject(t, svc, acme.ID, "Website")

	// Any case variation under the same client collides.
	_, err := svc.CreateProject(ctx, CreateProjectInput{ClientID: acme.ID, Name: "WEBSITE"})
	assertValidationError(t, err, "name")
	_, err = svc.CreateProject(ctx, CreateProjectInput{ClientID: acme.ID, Name: "  website  "})
	assertValidationError(t, err, "name")

	// The same name under another client is fine.
	if _, err := svc.CreateProject(ctx, CreateProjectInput{ClientID: beta.ID, Name: "Website"}); err != nil {
		t.Fatalf("expected success under different client: %v", err)
	}
}

func TestCreateProjectDateOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")

	_, err := svc.CreateProject(ctx, CreateProjectInput{
		ClientID:  client.ID,
		Name:      "Backwards",
		StartDate: date(t, "2026-05-01"),
		Deadline:  date(t, "2026-04-01"),
	})
	assertValidationError(t, err, "start_date")

	project, err := svc.CreateProject(ctx, CreateProjectInput{
		ClientID:  client.ID,
		Name:      "Forwards",
		StartDate: date(t, "2026-04-01"),
		Deadline:  date(t, "2026-05-01"),
	})
	if err != nil {
		t.Fatalf("expected success with ordered dates: %v", err)
	}
	if project.StartDate == nil || project.Deadline == nil {
		t.Error("expected both dates persisted")
	}
}

func TestCreateProjectNameErrorTakesPrecedence(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	mustCreateProject(t, svc, client.ID, "Website")

	// Both the name and the dates are invalid; the name error wins.
	_, err := svc.CreateProject(ctx, CreateProjectInput{
		ClientID:  client.ID,
		Name:      "Website",
		StartDate: date(t, "2026-05-01"),
		Deadline:  date(t, "2026-04-01"),
	})
	assertValidationError(t, err, "name")
}

func TestUpdateProjectPartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project, err := svc.CreateProject(ctx, CreateProjectInput{
		ClientID:  client.ID,
		Name:      "Website",
		StartDate: date(t, "2026-04-01"),
		Deadline:  date(t, "2026-05-01"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	mustCreateProject(t, svc, client.ID, "App")

	// Keeping its own name is allowed on update.
	name := "Website"
	if _, err := svc.UpdateProject(ctx, project.ID, UpdateProjectInput{Name: &name}); err != nil {
		t.Fatalf("update with own name failed: %v", err)
	}

	// Renaming onto a sibling collides.
	name = "app"
	_, err = svc.UpdateProject(ctx, project.ID, UpdateProjectInput{Name: &name})
	assertValidationError(t, err, "name")

	// A supplied date is validated against the resulting pair.
	_, err = svc.UpdateProject(ctx, project.ID, UpdateProjectInput{StartDate: date(t, "2026-06-01")})
	assertValidationError(t, err, "start_date")

	// Clearing the deadline lifts the constraint.
	updated, err := svc.UpdateProject(ctx, project.ID, UpdateProjectInput{
		StartDate:     date(t, "2026-06-01"),
		ClearDeadline: true,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Deadline != nil {
		t.Error("expected deadline cleared")
	}

	status := models.ProjectCompleted
	updated, err = svc.UpdateProject(ctx, project.ID, UpdateProjectInput{Status: &status})
	if err != nil || updated.Status != models.ProjectCompleted {
		t.Fatalf("status update failed: %v (%+v)", err, updated)
	}
}

func TestAddProjectMemberIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project := mustCreateProject(t, svc, client.ID, "Website")
	alice := createUser(t, store, "alice")

	for i := 0; i < 2; i++ {
		updated, err := svc.AddProjectMember(ctx, project.ID, alice.ID)
		if err != nil {
			t.Fatalf("AddProjectMember call %d failed: %v", i+1, err)
		}
		if len(updated.MemberIDs) != 1 {
			t.Fatalf("expected 1 member after call %d, got %d", i+1, len(updated.MemberIDs))
		}
	}

	_, err := svc.AddProjectMember(ctx, project.ID, "missing-user")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for unknown user, got %v", err)
	}
}

func TestCreateTaskAssigneeMustBeMember(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project := mustCreateProject(t, svc, client.ID, "Website")
	alice := createUser(t, store, "alice")

	input := CreateTaskInput{ProjectID: project.ID, Title: "Initial setup", AssigneeID: alice.ID}
	_, err := svc.CreateTask(ctx, input)
	assertValidationError(t, err, "assignee")

	if _, err := svc.AddProjectMember(ctx, project.ID, alice.ID); err != nil {
		t.Fatalf("AddProjectMember failed: %v", err)
	}

	task, err := svc.CreateTask(ctx, input)
	if err != nil {
		t.Fatalf("expected success after membership: %v", err)
	}
	if task.AssigneeUsername != "alice" {
		t.Errorf("expected assignee alice, got %q", task.AssigneeUsername)
	}

	bob := createUser(t, store, "bob")
	_, err = svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "X", AssigneeID: bob.ID})
	assertValidationError(t, err, "assignee")
}

func TestReassignTask(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project := mustCreateProject(t, svc, client.ID, "Website")
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	if _, err := svc.AddProjectMember(ctx, project.ID, alice.ID); err != nil {
		t.Fatalf("AddProjectMember failed: %v", err)
	}

	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Task"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := svc.ReassignTask(ctx, task.ID, &alice.ID)
	if err != nil || got.AssigneeID != alice.ID {
		t.Fatalf("reassign to member failed: %v", err)
	}

	_, err = svc.ReassignTask(ctx, task.ID, &bob.ID)
	assertValidationError(t, err, "assignee")

	got, err = svc.ReassignTask(ctx, task.ID, nil)
	if err != nil || got.AssigneeID != "" {
		t.Fatalf("clearing assignee failed: %v (%+v)", err, got)
	}
}

func TestRemoveProjectMemberClearsAssignments(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project := mustCreateProject(t, svc, client.ID, "Website")
	alice := createUser(t, store, "alice")
	if _, err := svc.AddProjectMember(ctx, project.ID, alice.ID); err != nil {
		t.Fatalf("AddProjectMember failed: %v", err)
	}

	for _, title := range []string{"First", "Second"} {
		if _, err := svc.CreateTask(ctx, CreateTaskInput{
			ProjectID: project.ID, Title: title, AssigneeID: alice.ID,
		}); err != nil {
			t.Fatalf("CreateTask %s failed: %v", title, err)
		}
	}

	updated, err := svc.RemoveProjectMember(ctx, project.ID, alice.ID)
	if err != nil {
		t.Fatalf("RemoveProjectMember failed: %v", err)
	}
	if len(updated.MemberIDs) != 0 {
		t.Errorf("expected empty member set, got %v", updated.MemberIDs)
	}

	tasks, err := svc.ListTasks(ctx, storage.TaskFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	for _, task := range tasks {
		if task.AssigneeID != "" {
			t.Errorf("task %q still assigned to %s", task.Title, task.AssigneeID)
		}
	}

	// Removing a non-member is a no-op.
	if _, err := svc.RemoveProjectMember(ctx, project.ID, alice.ID); err != nil {
		t.Errorf("removing non-member should succeed: %v", err)
	}
}

func TestLogTimeValidation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project := mustCreateProject(t, svc, client.ID, "Website")
	alice := createUser(t, store, "alice")
	if _, err := svc.AddProjectMember(ctx, project.ID, alice.ID); err != nil {
		t.Fatalf("AddProjectMember failed: %v", err)
	}
	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Task", AssigneeID: alice.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	_, err = svc.LogTime(ctx, LogTimeInput{
		TaskID: task.ID, UserID: alice.ID,
		Date: *date(t, "2026-01-01"), Hours: decimal.Zero,
	})
	assertValidationError(t, err, "hours")

	_, err = svc.LogTime(ctx, LogTimeInput{
		TaskID: task.ID, UserID: alice.ID,
		Date: *date(t, "2026-01-01"), Hours: decimal.RequireFromString("-1"),
	})
	assertValidationError(t, err, "hours")

	// The clock is pinned to 2026-06-01, so the end of the year is future.
	_, err = svc.LogTime(ctx, LogTimeInput{
		TaskID: task.ID, UserID: alice.ID,
		Date: *date(t, "2026-12-31"), Hours: decimal.RequireFromString("1"),
	})
	assertValidationError(t, err, "date")

	entry, err := svc.LogTime(ctx, LogTimeInput{
		TaskID: task.ID, UserID: alice.ID,
		Date: *date(t, "2026-01-01"), Hours: decimal.RequireFromString("1.5"),
	})
	if err != nil {
		t.Fatalf("expected success for past date: %v", err)
	}
	if !entry.Hours.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected hours 1.5, got %s", entry.Hours)
	}
	if entry.Date.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("expected date preserved, got %s", entry.Date)
	}

	// Logging on the current day is allowed.
	if _, err := svc.LogTime(ctx, LogTimeInput{
		TaskID: task.ID, UserID: alice.ID,
		Date: *date(t, "2026-06-01"), Hours: decimal.RequireFromString("2"),
	}); err != nil {
		t.Errorf("expected success for today: %v", err)
	}
}

func TestLogTimeAuthorization(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project := mustCreateProject(t, svc, client.ID, "Website")
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	outsider := createUser(t, store, "carol")
	for _, u := range []*models.User{alice, bob} {
		if _, err := svc.AddProjectMember(ctx, project.ID, u.ID); err != nil {
			t.Fatalf("AddProjectMember failed: %v", err)
		}
	}
	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Task", AssigneeID: alice.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	input := LogTimeInput{TaskID: task.ID, Date: *date(t, "2026-05-01"), Hours: decimal.RequireFromString("2")}

	// Assignee and fellow member may log; an outsider may not.
	input.UserID = alice.ID
	if _, err := svc.LogTime(ctx, input); err != nil {
		t.Errorf("assignee should log time: %v", err)
	}
	input.UserID = bob.ID
	if _, err := svc.LogTime(ctx, input); err != nil {
		t.Errorf("project member should log time: %v", err)
	}
	input.UserID = outsider.ID
	_, err = svc.LogTime(ctx, input)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Errorf("expected AuthorizationError for outsider, got %v", err)
	}

	// Validation still runs before authorization.
	input.Hours = decimal.Zero
	_, err = svc.LogTime(ctx, input)
	assertValidationError(t, err, "hours")
}

func TestHoursByProjectReport(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	client := mustCreateClient(t, svc, "ACME")
	project := mustCreateProject(t, svc, client.ID, "Website")
	alice := createUser(t, store, "alice")
	if _, err := svc.AddProjectMember(ctx, project.ID, alice.ID); err != nil {
		t.Fatalf("AddProjectMember failed: %v", err)
	}
	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Task"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	for _, hours := range []string{"2", "3"} {
		if _, err := svc.LogTime(ctx, LogTimeInput{
			TaskID: task.ID, UserID: alice.ID,
			Date: *date(t, "2026-05-01"), Hours: decimal.RequireFromString(hours),
		}); err != nil {
			t.Fatalf("LogTime failed: %v", err)
		}
	}

	report, err := svc.HoursByProject(ctx, nil, nil)
	if err != nil {
		t.Fatalf("HoursByProject failed: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report))
	}
	if !report[0].TotalHours.Equal(decimal.RequireFromString("5")) {
		t.Errorf("expected total 5, got %s", report[0].TotalHours)
	}
}
