package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/timesheet/internal/service"
)

const dateLayout = "2006-01-02"

// parseOptionalDate parses a YYYY-MM-DD string; empty means absent.
func parseOptionalDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%s must be a YYYY-MM-DD date", field)
	}
	return &d, nil
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
	errCodeBadRequest       = "BAD_REQUEST"
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

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
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
