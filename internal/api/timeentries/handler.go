// Package timeentries implements the time logging endpoints. Plain members
// only see and manage their own entries; managers and admins see everyone's.
package timeentries

import (
	"encoding/json"
	"net/http"
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

// CreateRequest is the request body for logging time. Managers and admins
// may log on behalf of another user via user_id.
type CreateRequest struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	Hours  string `json:"hours"`
	Note   string `json:"note"`
}

// EntryResponse is the wire form of a time entry. The date uses YYYY-MM-DD.
type EntryResponse struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	TaskTitle   string `json:"task_title,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	ClientName  string `json:"client_name,omitempty"`
	UserID      string `json:"user_id"`
	Username    string `json:"username,omitempty"`
	Date        string `json:"date"`
	Hours       string `json:"hours"`
	Note        string `json:"note,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func entryToResponse(e *models.TimeEntry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		TaskID:      e.TaskID,
		TaskTitle:   e.TaskTitle,
		ProjectID:   e.ProjectID,
		ProjectName: e.ProjectName,
		ClientName:  e.ClientName,
		UserID:      e.UserID,
		Username:    e.Username,
		Date:        e.Date.Format(dateLayout),
		Hours:       e.Hours.String(),
		Note:        e.Note,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// List returns time entries matching the query filters, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TimeEntryFilter{
		TaskID:    q.Get("task_id"),
		ProjectID: q.Get("project_id"),
		ClientID:  q.Get("client_id"),
	}
	from, err := parseOptionalDate(q.Get("from"), "from")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	to, err := parseOptionalDate(q.Get("to"), "to")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	filter.From = from
	filter.To = to

	if middleware.GetRole(r.Context()).CanManage() {
		filter.UserID = q.Get("user")
	} else {
		filter.UserID = middleware.GetUserID(r.Context())
	}

	list, err := h.service.ListTimeEntries(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "list time entries", err)
		return
	}

	resp := make([]*EntryResponse, len(list))
	for i, e := range list {
		resp[i] = entryToResponse(e)
	}
	jsonOK(w, resp)
}

// GetByID returns a time entry by ID.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "time entry id required")
		return
	}

	entry, err := h.service.GetTimeEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, "get time entry", err)
		return
	}
	if !middleware.GetRole(r.Context()).CanManage() && entry.UserID != middleware.GetUserID(r.Context()) {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "not your time entry")
		return
	}
	jsonOK(w, entryToResponse(entry))
}

// Create logs hours against a task. The date must not be in the future and
// the logging user must be the task's assignee or a project member.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if req.TaskID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "task_id is required")
		return
	}
	if req.Date == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "date is required")
		return
	}
	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "hours must be a decimal number")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if req.UserID != "" && req.UserID != userID {
		if !middleware.GetRole(r.Context()).CanManage() {
			jsonError(w, http.StatusForbidden, errCodeForbidden, "cannot log time for another user")
			return
		}
		userID = req.UserID
	}

	entry, err := h.service.LogTime(r.Context(), service.LogTimeInput{
		TaskID: req.TaskID,
		UserID: userID,
		Date:   *date,
		Hours:  hours,
		Note:   req.Note,
	})
	if err != nil {
		writeDomainError(w, "log time", err)
		return
	}

	metrics.TimeEntriesLogged.Inc()
	loggedHours, _ := entry.Hours.Float64()
	metrics.HoursLogged.Add(loggedHours)

	jsonCreated(w, entryToResponse(entry))
}

// Delete removes a time entry. Only the entry's owner, a manager, or an
// admin may delete it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "time entry id required")
		return
	}

	entry, err := h.service.GetTimeEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, "delete time entry", err)
		return
	}
	if !middleware.GetRole(r.Context()).CanManage() && entry.UserID != middleware.GetUserID(r.Context()) {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "not your time entry")
		return
	}

	if err := h.service.DeleteTimeEntry(r.Context(), id); err != nil {
		writeDomainError(w, "delete time entry", err)
		return
	}
	jsonNoContent(w)
}
