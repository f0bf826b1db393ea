// Package reports implements the aggregate reporting endpoints.
package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

const dateLayout = "2006-01-02"

// HoursByProject returns total logged hours per project, highest first.
// Optional from/to query params bound the date range inclusively.
func (h *Handler) HoursByProject(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	rows, err := h.service.HoursByProject(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, "hours by project report", err)
		return
	}
	if rows == nil {
		rows = []*models.ProjectHours{}
	}
	jsonOK(w, rows)
}

// HoursByUser returns total logged hours per user, highest first.
func (h *Handler) HoursByUser(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	rows, err := h.service.HoursByUser(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, "hours by user report", err)
		return
	}
	if rows == nil {
		rows = []*models.UserHours{}
	}
	jsonOK(w, rows)
}

// TaskStatus returns task counts per status, optionally scoped to one
// project via the project_id query param.
func (h *Handler) TaskStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.TaskCountsByStatus(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		writeDomainError(w, "task status report", err)
		return
	}
	if rows == nil {
		rows = []*models.TaskStatusCount{}
	}
	jsonOK(w, rows)
}

// parseRange reads the optional from/to query params as YYYY-MM-DD dates.
func parseRange(r *http.Request) (from, to *time.Time, err error) {
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, nil, fmt.Errorf("from must be a YYYY-MM-DD date")
		}
		from = &d
	}
	if s := q.Get("to"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, nil, fmt.Errorf("to must be a YYYY-MM-DD date")
		}
		to = &d
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}

// Response helpers (local to avoid import cycle with api package)
type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeForbidden        = "FORBIDDEN"
	errCodeNotFound         = "NOT_FOUND"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

// writeDomainError translates service error kinds into HTTP responses.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	var validationErr *service.ValidationError
	var authErr *service.AuthorizationError
	var notFoundErr *service.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: errorBody{
			Code:    errCodeValidationFailed,
			Message: validationErr.Error(),
			Fields:  validationErr.Fields,
		}})
	case errors.As(err, &authErr):
		jsonError(w, http.StatusForbidden, errCodeForbidden, authErr.Message)
	case errors.As(err, &notFoundErr):
		jsonError(w, http.StatusNotFound, errCodeNotFound, notFoundErr.Error())
	default:
		log.Printf("%s error: %v", op, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
	}
}
