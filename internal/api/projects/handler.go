// Package projects implements the project management endpoints, including
// the membership sub-resource.
package projects

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/timesheet/internal/api/middleware"
	"github.com/good-yellow-bee/timesheet/internal/metrics"
	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/service"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

type Handler struct {
	service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// Request types
type CreateRequest struct {
	ClientID    string   `json:"client_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"`
	Deadline    string   `json:"deadline"`
	Status      string   `json:"status"`
	MemberIDs   []string `json:"member_ids"`
}

// UpdateRequest applies a partial update. Nil fields are untouched; an
// empty date string clears that date.
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

// ProjectResponse is the wire form of a project. Dates use YYYY-MM-DD.
type ProjectResponse struct {
	ID          string   `json:"id"`
	ClientID    string   `json:"client_id"`
	ClientName  string   `json:"client_name,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	Status      string   `json:"status"`
	MemberIDs   []string `json:"member_ids"`
	CreatedAt   string   `json:"created_at"`
}

func projectToResponse(p *models.Project) *ProjectResponse {
	resp := &ProjectResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		ClientName:  p.ClientName,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		MemberIDs:   p.MemberIDs,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if resp.MemberIDs == nil {
		resp.MemberIDs = []string{}
	}
	if p.StartDate != nil {
		resp.StartDate = p.StartDate.Format(dateLayout)
	}
	if p.Deadline != nil {
		resp.Deadline = p.Deadline.Format(dateLayout)
	}
	return resp
}

// List returns projects matching the query filters. Plain members only see
// projects they belong to; managers and admins see everything and may
// filter by member.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ProjectFilter{
		ClientID: q.Get("client_id"),
		Search:   q.Get("search"),
	}
	if status := q.Get("status"); status != "" {
		if !models.ValidProjectStatus(models.ProjectStatus(status)) {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "unknown project status")
			return
		}
		filter.Status = models.ProjectStatus(status)
	}

	role := middleware.GetRole(r.Context())
	if role.CanManage() {
		filter.MemberID = q.Get("member")
	} else {
		filter.MemberID = middleware.GetUserID(r.Context())
	}

	list, err := h.service.ListProjects(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "list projects", err)
		return
	}

	resp := make([]*ProjectResponse, len(list))
	for i, p := range list {
		resp[i] = projectToResponse(p)
	}
	jsonOK(w, resp)
}

// GetByID returns a project with its member set.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeDomainError(w, "get project", err)
		return
	}
	jsonOK(w, projectToResponse(project))
}

// Create creates a project under a client (manager or admin).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if req.ClientID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "client_id is required")
		return
	}
	startDate, err := parseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	deadline, err := parseOptionalDate(req.Deadline, "deadline")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	project, err := h.service.CreateProject(r.Context(), service.CreateProjectInput{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		Deadline:    deadline,
		Status:      models.ProjectStatus(req.Status),
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		writeDomainError(w, "create project", err)
		return
	}

	metrics.ProjectsCreated.Inc()
	jsonCreated(w, projectToResponse(project))
}

// Update applies a partial update to a project (manager or admin).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	input := service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.StartDate != nil {
		if *req.StartDate == "" {
			input.ClearStartDate = true
		} else {
			d, err := parseOptionalDate(*req.StartDate, "start_date")
			if err != nil {
				jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
				return
			}
			input.StartDate = d
		}
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			input.ClearDeadline = true
		} else {
			d, err := parseOptionalDate(*req.Deadline, "deadline")
			if err != nil {
				jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
				return
			}
			input.Deadline = d
		}
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		input.Status = &status
	}

	project, err := h.service.UpdateProject(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, "update project", err)
		return
	}
	jsonOK(w, projectToResponse(project))
}

// Delete removes a project with its tasks and time entries (manager or admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		writeDomainError(w, "delete project", err)
		return
	}
	jsonNoContent(w)
}

// ListMembers returns the project's members ordered by username.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	members, err := h.service.GetProjectMembers(r.Context(), id)
	if err != nil {
		writeDomainError(w, "list project members", err)
		return
	}
	if members == nil {
		members = []*models.ProjectMember{}
	}
	jsonOK(w, members)
}

// AddMember adds a user to the project. Adding an existing member is a
// no-op (manager or admin).
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "user_id is required")
		return
	}

	project, err := h.service.AddProjectMember(r.Context(), id, req.UserID)
	if err != nil {
		writeDomainError(w, "add project member", err)
		return
	}
	jsonOK(w, projectToResponse(project))
}

// RemoveMember removes a user from the project and clears that user's task
// assignments on it. Removing a non-member is a no-op (manager or admin).
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")
	if id == "" || userID == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id and user id required")
		return
	}

	project, err := h.service.RemoveProjectMember(r.Context(), id, userID)
	if err != nil {
		writeDomainError(w, "remove project member", err)
		return
	}
	jsonOK(w, projectToResponse(project))
}
