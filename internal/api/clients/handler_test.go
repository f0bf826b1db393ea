package clients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/timesheet/internal/api/middleware"
	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/service"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	store := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Open(); err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewHandler(service.New(store))
}

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/clients", h.List)
	r.Post("/clients", h.Create)
	r.Get("/clients/{id}", h.GetByID)
	r.Put("/clients/{id}", h.Update)
	r.Delete("/clients/{id}", h.Delete)
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithIdentity(req.Context(), "manager-id", "boss", models.RoleManager))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeClient(t *testing.T, rec *httptest.ResponseRecorder) *ClientResponse {
	t.Helper()
	var resp struct {
		Data *ClientResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Data
}

func TestCreateAndGetClient(t *testing.T) {
	r := newTestRouter(newTestHandler(t))

	rec := doRequest(r, "POST", "/clients", `{"name":"ACME","contact_email":"acme@example.com","note":"important"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	created := decodeClient(t, rec)
	if created.Name != "ACME" {
		t.Errorf("name = %q, want ACME", created.Name)
	}

	rec = doRequest(r, "GET", "/clients/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	got := decodeClient(t, rec)
	if got.ContactEmail != "acme@example.com" {
		t.Errorf("contact_email = %q", got.ContactEmail)
	}
}

func TestCreateClient_DuplicateName(t *testing.T) {
	r := newTestRouter(newTestHandler(t))

	if rec := doRequest(r, "POST", "/clients", `{"name":"ACME"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	rec := doRequest(r, "POST", "/clients", `{"name":"ACME"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate: status = %d, want %d; body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestCreateClient_MissingName(t *testing.T) {
	r := newTestRouter(newTestHandler(t))

	rec := doRequest(r, "POST", "/clients", `{"note":"no name"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateClient(t *testing.T) {
	r := newTestRouter(newTestHandler(t))

	rec := doRequest(r, "POST", "/clients", `{"name":"ACME","note":"old"}`)
	created := decodeClient(t, rec)

	rec = doRequest(r, "PUT", "/clients/"+created.ID, `{"note":"new"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	updated := decodeClient(t, rec)
	if updated.Note != "new" {
		t.Errorf("note = %q, want new", updated.Note)
	}
	if updated.Name != "ACME" {
		t.Errorf("name = %q, unchanged fields must survive", updated.Name)
	}
}

func TestDeleteClient(t *testing.T) {
	r := newTestRouter(newTestHandler(t))

	rec := doRequest(r, "POST", "/clients", `{"name":"ACME"}`)
	created := decodeClient(t, rec)

	if rec := doRequest(r, "DELETE", "/clients/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if rec := doRequest(r, "GET", "/clients/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListClients_Ordered(t *testing.T) {
	r := newTestRouter(newTestHandler(t))

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if rec := doRequest(r, "POST", "/clients", `{"name":"`+name+`"}`); rec.Code != http.StatusCreated {
			t.Fatalf("create %s: status = %d", name, rec.Code)
		}
	}

	rec := doRequest(r, "GET", "/clients", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var resp struct {
		Data []*ClientResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("len = %d, want 3", len(resp.Data))
	}
	if resp.Data[0].Name != "Alpha" || resp.Data[2].Name != "Zeta" {
		t.Errorf("order = [%s %s %s], want name order", resp.Data[0].Name, resp.Data[1].Name, resp.Data[2].Name)
	}
}
