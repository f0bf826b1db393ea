package projects

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/good-yellow-bee/timesheet/internal/api/middleware"
	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/service"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

type testEnv struct {
	store storage.Storage
	svc   *service.Service
	mux   *chi.Mux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Open(); err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := service.New(store)
	h := NewHandler(svc)

	mux := chi.NewRouter()
	mux.Get("/projects", h.List)
	mux.Post("/projects", h.Create)
	mux.Get("/projects/{id}", h.GetByID)
	mux.Put("/projects/{id}", h.Update)
	mux.Delete("/projects/{id}", h.Delete)
	mux.Get("/projects/{id}/members", h.ListMembers)
	mux.Post("/projects/{id}/members", h.AddMember)
	mux.Delete("/projects/{id}/members/{userID}", h.RemoveMember)

	return &testEnv{store: store, svc: svc, mux: mux}
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.NewUser(username, username+"@test.com", role)
	user.ID = uuid.New().String()
	user.PasswordHash = string(hash)
	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) createClient(t *testing.T, name string) *models.Client {
	t.Helper()

	client, err := e.svc.CreateClient(context.Background(), service.CreateClientInput{Name: name})
	if err != nil {
		t.Fatalf("create client %s: %v", name, err)
	}
	return client
}

func (e *testEnv) do(user *models.User, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithIdentity(req.Context(), user.ID, user.Username, user.Role))
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeProject(t *testing.T, rec *httptest.ResponseRecorder) *ProjectResponse {
	t.Helper()
	var resp struct {
		Data *ProjectResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Data
}

func decodeProjects(t *testing.T, rec *httptest.ResponseRecorder) []*ProjectResponse {
	t.Helper()
	var resp struct {
		Data []*ProjectResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Data
}

func TestCreateProject_WithMembers(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)
	alice := env.createUser(t, "alice", models.RoleMember)
	client := env.createClient(t, "ACME")

	body := `{"client_id":"` + client.ID + `","name":"Website","start_date":"2026-01-15","deadline":"2026-06-30","member_ids":["` + alice.ID + `"]}`
	rec := env.do(manager, "POST", "/projects", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d; body: %s", rec.Code, rec.Body.String())
	}

	project := decodeProject(t, rec)
	if project.Status != string(models.ProjectActive) {
		t.Errorf("status = %q, want default active", project.Status)
	}
	if project.StartDate != "2026-01-15" || project.Deadline != "2026-06-30" {
		t.Errorf("dates = %q/%q", project.StartDate, project.Deadline)
	}
	if len(project.MemberIDs) != 1 || project.MemberIDs[0] != alice.ID {
		t.Errorf("member_ids = %v, want [%s]", project.MemberIDs, alice.ID)
	}
}

func TestCreateProject_DeadlineBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)
	client := env.createClient(t, "ACME")

	body := `{"client_id":"` + client.ID + `","name":"Website","start_date":"2026-06-30","deadline":"2026-01-15"}`
	rec := env.do(manager, "POST", "/projects", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestCreateProject_DuplicateNamePerClient(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)
	client := env.createClient(t, "ACME")
	other := env.createClient(t, "Globex")

	body := `{"client_id":"` + client.ID + `","name":"Website"}`
	if rec := env.do(manager, "POST", "/projects", body); rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	// Case-insensitive duplicate under the same client is rejected.
	rec := env.do(manager, "POST", "/projects", `{"client_id":"`+client.ID+`","name":"WEBSITE"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// The same name under another client is fine.
	rec = env.do(manager, "POST", "/projects", `{"client_id":"`+other.ID+`","name":"Website"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("other client: status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestUpdateProject_ClearDeadline(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)
	client := env.createClient(t, "ACME")

	rec := env.do(manager, "POST", "/projects",
		`{"client_id":"`+client.ID+`","name":"Website","deadline":"2026-06-30"}`)
	project := decodeProject(t, rec)

	rec = env.do(manager, "PUT", "/projects/"+project.ID, `{"deadline":"","status":"completed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	updated := decodeProject(t, rec)
	if updated.Deadline != "" {
		t.Errorf("deadline = %q, want cleared", updated.Deadline)
	}
	if updated.Status != string(models.ProjectCompleted) {
		t.Errorf("status = %q, want completed", updated.Status)
	}
	if updated.Name != "Website" {
		t.Errorf("name = %q, unchanged fields must survive", updated.Name)
	}
}

func TestProjectMembers_AddAndRemove(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)
	alice := env.createUser(t, "alice", models.RoleMember)
	client := env.createClient(t, "ACME")

	rec := env.do(manager, "POST", "/projects", `{"client_id":"`+client.ID+`","name":"Website"}`)
	project := decodeProject(t, rec)

	rec = env.do(manager, "POST", "/projects/"+project.ID+"/members", `{"user_id":"`+alice.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add member: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if got := decodeProject(t, rec); len(got.MemberIDs) != 1 {
		t.Fatalf("member_ids = %v, want one entry", got.MemberIDs)
	}

	// Adding the same member again is a no-op.
	rec = env.do(manager, "POST", "/projects/"+project.ID+"/members", `{"user_id":"`+alice.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-add member: status = %d", rec.Code)
	}
	if got := decodeProject(t, rec); len(got.MemberIDs) != 1 {
		t.Errorf("member_ids after re-add = %v, want one entry", got.MemberIDs)
	}

	rec = env.do(manager, "DELETE", "/projects/"+project.ID+"/members/"+alice.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove member: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if got := decodeProject(t, rec); len(got.MemberIDs) != 0 {
		t.Errorf("member_ids after remove = %v, want empty", got.MemberIDs)
	}
}

func TestListProjects_MemberScoping(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)
	alice := env.createUser(t, "alice", models.RoleMember)
	bob := env.createUser(t, "bob", models.RoleMember)
	client := env.createClient(t, "ACME")

	env.do(manager, "POST", "/projects",
		`{"client_id":"`+client.ID+`","name":"Website","member_ids":["`+alice.ID+`"]}`)
	env.do(manager, "POST", "/projects",
		`{"client_id":"`+client.ID+`","name":"Mobile App"}`)

	if got := decodeProjects(t, env.do(manager, "GET", "/projects", "")); len(got) != 2 {
		t.Errorf("manager sees %d projects, want 2", len(got))
	}
	if got := decodeProjects(t, env.do(alice, "GET", "/projects", "")); len(got) != 1 {
		t.Errorf("alice sees %d projects, want 1", len(got))
	}
	if got := decodeProjects(t, env.do(bob, "GET", "/projects", "")); len(got) != 0 {
		t.Errorf("bob sees %d projects, want 0", len(got))
	}

	// Managers may filter by member explicitly.
	got := decodeProjects(t, env.do(manager, "GET", "/projects?member="+alice.ID, ""))
	if len(got) != 1 || got[0].Name != "Website" {
		t.Errorf("member filter = %v, want [Website]", got)
	}
}

func TestListProjects_UnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)

	rec := env.do(manager, "GET", "/projects?status=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDeleteProject_Cascades(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "boss", models.RoleManager)
	client := env.createClient(t, "ACME")

	rec := env.do(manager, "POST", "/projects", `{"client_id":"`+client.ID+`","name":"Website"}`)
	project := decodeProject(t, rec)

	task, err := env.svc.CreateTask(context.Background(), service.CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Setup",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if rec := env.do(manager, "DELETE", "/projects/"+project.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if _, err := env.svc.GetTask(context.Background(), task.ID); err == nil {
		t.Error("task survived project deletion")
	}
}
