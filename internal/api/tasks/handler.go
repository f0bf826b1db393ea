// Package tasks implements the task management endpoints. Write access is
// limited to managers, admins, and members of the task's project.
package tasks

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

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
	ProjectID     string `json:"project_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	AssigneeID    string `json:"assignee_id"`
	Status        string `json:"status"`
	EstimateHours string `json:"estimate_hours"`
	DueDate       string `json:"due_date"`
}

// UpdateRequest applies a partial update. Nil fields are untouched; an
// empty due_date string clears the due date. Assignee changes go through
// the assignee endpoint.
type UpdateRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Status        *string `json:"status,omitempty"`
	EstimateHours *string `json:"estimate_hours,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
}

// ReassignRequest sets or clears the assignee. A null or empty assignee_id
// clears the assignment.
type ReassignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// TaskResponse is the wire form of a task. Dates use YYYY-MM-DD.
type TaskResponse struct {
	ID               string `json:"id"`
	ProjectID        string `json:"project_id"`
	ProjectName      string `json:"project_name,omitempty"`
	ClientName       string `json:"client_name,omitempty"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	AssigneeID       string `json:"assignee_id,omitempty"`
	AssigneeUsername string `json:"assignee_username,omitempty"`
	Status           string `json:"status"`
	EstimateHours    string `json:"estimate_hours"`
	DueDate          string `json:"due_date,omitempty"`
	CreatedAt        string `json:"created_at"`
}

func taskToResponse(t *models.Task) *TaskResponse {
	resp := &TaskResponse{
		ID:               t.ID,
		ProjectID:        t.ProjectID,
		ProjectName:      t.ProjectName,
		ClientName:       t.ClientName,
		Title:            t.Title,
		Description:      t.Description,
		AssigneeID:       t.AssigneeID,
		AssigneeUsername: t.AssigneeUsername,
		Status:           string(t.Status),
		EstimateHours:    t.EstimateHours.String(),
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		resp.DueDate = t.DueDate.Format(dateLayout)
	}
	return resp
}

// canTouchProject reports whether the caller may modify tasks in the
// project. Managers and admins always can; members must belong to it.
func (h *Handler) canTouchProject(r *http.Request, projectID string) (bool, error) {
	if middleware.GetRole(r.Context()).CanManage() {
		return true, nil
	}
	return h.service.IsProjectMember(r.Context(), projectID, middleware.GetUserID(r.Context()))
}

// List returns tasks matching the query filters, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TaskFilter{
		ProjectID:  q.Get("project_id"),
		AssigneeID: q.Get("assignee"),
		Search:     q.Get("search"),
	}
	if status := q.Get("status"); status != "" {
		if !models.ValidTaskStatus(models.TaskStatus(status)) {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "unknown task status")
			return
		}
		filter.Status = models.TaskStatus(status)
	}
	if v := q.Get("has_assignee"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "has_assignee must be a boolean")
			return
		}
		filter.HasAssignee = &b
	}
	if v := q.Get("overdue"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "overdue must be a boolean")
			return
		}
		if b {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			filter.OverdueOn = &today
		}
	}

	list, err := h.service.ListTasks(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "list tasks", err)
		return
	}

	resp := make([]*TaskResponse, len(list))
	for i, t := range list {
		resp[i] = taskToResponse(t)
	}
	jsonOK(w, resp)
}

// GetByID returns a task by ID.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "task id required")
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeDomainError(w, "get task", err)
		return
	}
	jsonOK(w, taskToResponse(task))
}

// Create creates a task in a project the caller may modify.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if req.ProjectID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "project_id is required")
		return
	}

	ok, err := h.canTouchProject(r, req.ProjectID)
	if err != nil {
		writeDomainError(w, "create task", err)
		return
	}
	if !ok {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "not a member of this project")
		return
	}

	estimate, err := parseOptionalDecimal(req.EstimateHours, "estimate_hours")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate, "due_date")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	task, err := h.service.CreateTask(r.Context(), service.CreateTaskInput{
		ProjectID:     req.ProjectID,
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		Status:        models.TaskStatus(req.Status),
		EstimateHours: estimate,
		DueDate:       dueDate,
	})
	if err != nil {
		writeDomainError(w, "create task", err)
		return
	}

	metrics.TasksCreated.Inc()
	jsonCreated(w, taskToResponse(task))
}

// Update applies a partial update to a task.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "task id required")
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeDomainError(w, "update task", err)
		return
	}
	ok, err := h.canTouchProject(r, task.ProjectID)
	if err != nil {
		writeDomainError(w, "update task", err)
		return
	}
	if !ok {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "not a member of this project")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.EstimateHours != nil {
		estimate, err := parseOptionalDecimal(*req.EstimateHours, "estimate_hours")
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		input.EstimateHours = &estimate
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			input.ClearDueDate = true
		} else {
			d, err := parseOptionalDate(*req.DueDate, "due_date")
			if err != nil {
				jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
				return
			}
			input.DueDate = d
		}
	}

	task, err = h.service.UpdateTask(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, "update task", err)
		return
	}
	jsonOK(w, taskToResponse(task))
}

// Reassign sets or clears the task's assignee.
func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "task id required")
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeDomainError(w, "reassign task", err)
		return
	}
	ok, err := h.canTouchProject(r, task.ProjectID)
	if err != nil {
		writeDomainError(w, "reassign task", err)
		return
	}
	if !ok {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "not a member of this project")
		return
	}

	var req ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	assigneeID := req.AssigneeID
	if assigneeID != nil && *assigneeID == "" {
		assigneeID = nil
	}

	task, err = h.service.ReassignTask(r.Context(), id, assigneeID)
	if err != nil {
		writeDomainError(w, "reassign task", err)
		return
	}
	jsonOK(w, taskToResponse(task))
}

// Delete removes a task together with its time entries.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "task id required")
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeDomainError(w, "delete task", err)
		return
	}
	ok, err := h.canTouchProject(r, task.ProjectID)
	if err != nil {
		writeDomainError(w, "delete task", err)
		return
	}
	if !ok {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "not a member of this project")
		return
	}

	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		writeDomainError(w, "delete task", err)
		return
	}
	jsonNoContent(w)
}

// parseOptionalDecimal parses a decimal string; empty means zero.
func parseOptionalDecimal(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errInvalidDecimal(field)
	}
	return d, nil
}
