package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// CreateClientInput holds the fields for a new client.
type CreateClientInput struct {
	Name         string
	ContactEmail string
	ContactPhone string
	Note         string
}

// CreateClient creates a client with a unique name.
func (s *Service) CreateClient(ctx context.Context, input CreateClientInput) (*models.Client, error) {
	name, err := trimmedName(input.Name, "name")
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		ID:           uuid.New().String(),
		Name:         name,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
		Note:         input.Note,
		CreatedAt:    time.Now(),
	}

	err = s.store.WithTx(ctx, func(store storage.Store) error {
		existing, err := store.Clients().GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return newValidationError("name", "a client with this name already exists")
		}
		return store.Clients().Create(ctx, client)
	})
	if err != nil {
		return nil, mapStoreErr(err, "name", "a client with this name already exists")
	}
	return client, nil
}

// UpdateClientInput holds the optional fields for a client update. Nil
// fields are left untouched.
type UpdateClientInput struct {
	Name         *string
	ContactEmail *string
	ContactPhone *string
	Note         *string
}

// UpdateClient applies a partial update to a client.
func (s *Service) UpdateClient(ctx context.Context, id string, input UpdateClientInput) (*models.Client, error) {
	var client *models.Client
	err := s.store.WithTx(ctx, func(store storage.Store) error {
		var err error
		client, err = store.Clients().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return newNotFoundError("client", id)
		}

		if input.Name != nil {
			name, err := trimmedName(*input.Name, "name")
			if err != nil {
				return err
			}
			existing, err := store.Clients().GetByName(ctx, name)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != id {
				return newValidationError("name", "a client with this name already exists")
			}
			client.Name = name
		}
		if input.ContactEmail != nil {
			client.ContactEmail = *input.ContactEmail
		}
		if input.ContactPhone != nil {
			client.ContactPhone = *input.ContactPhone
		}
		if input.Note != nil {
			client.Note = *input.Note
		}
		return store.Clients().Update(ctx, client)
	})
	if err != nil {
		return nil, mapStoreErr(err, "name", "a client with this name already exists")
	}
	return client, nil
}

// DeleteClient removes a client. Its projects, their tasks and the tasks'
// time entries go with it.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	client, err := s.store.Clients().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return newNotFoundError("client", id)
	}
	return s.store.Clients().Delete(ctx, id)
}

// GetClient returns a client by id.
func (s *Service) GetClient(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.store.Clients().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, newNotFoundError("client", id)
	}
	return client, nil
}

// ListClients returns all clients ordered by name.
func (s *Service) ListClients(ctx context.Context) ([]*models.Client, error) {
	return s.store.Clients().List(ctx)
}
