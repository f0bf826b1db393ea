// Package clients implements the client management endpoints.
package clients

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// Request types
type CreateRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Note         string `json:"note"`
}

type UpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Note         *string `json:"note,omitempty"`
}

// ClientResponse is the wire form of a client.
type ClientResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Note         string `json:"note,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func clientToResponse(c *models.Client) *ClientResponse {
	return &ClientResponse{
		ID:           c.ID,
		Name:         c.Name,
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,
		Note:         c.Note,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

// List returns all clients ordered by name.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		writeDomainError(w, "list clients", err)
		return
	}

	resp := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		resp[i] = clientToResponse(c)
	}
	jsonOK(w, resp)
}

// Create creates a new client (manager or admin).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if err := validateName(req.Name); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	client, err := h.service.CreateClient(r.Context(), service.CreateClientInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Note:         req.Note,
	})
	if err != nil {
		writeDomainError(w, "create client", err)
		return
	}

	jsonCreated(w, clientToResponse(client))
}

// GetByID returns a client by ID.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "client id required")
		return
	}

	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		writeDomainError(w, "get client", err)
		return
	}
	jsonOK(w, clientToResponse(client))
}

// Update applies a partial update to a client (manager or admin).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "client id required")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
	}

	client, err := h.service.UpdateClient(r.Context(), id, service.UpdateClientInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Note:         req.Note,
	})
	if err != nil {
		writeDomainError(w, "update client", err)
		return
	}
	jsonOK(w, clientToResponse(client))
}

// Delete removes a client and everything under it (manager or admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "client id required")
		return
	}

	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		writeDomainError(w, "delete client", err)
		return
	}
	jsonNoContent(w)
}
