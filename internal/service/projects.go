package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/timesheet/internal/models"
	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// CreateProjectInput holds the fields for a new project.
type CreateProjectInput struct {
	ClientID    string
	Name        string
	Description string
	StartDate   *time.Time
	Deadline    *time.Time
	Status      models.ProjectStatus
	MemberIDs   []string
}

// CreateProject creates a project under a client. The name must be unique
// for the client (case-insensitive); the name check runs before the date
// check so its error wins when both would fail.
func (s *Service) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name, err := trimmedName(input.Name, "name")
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.ProjectActive
	}
	if !models.ValidProjectStatus(status) {
		return nil, newValidationError("status", "unknown project status")
	}

	var project *models.Project
	err = s.store.WithTx(ctx, func(store storage.Store) error {
		client, err := store.Clients().GetByID(ctx, input.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return newNotFoundError("client", input.ClientID)
		}

		if err := checkUniqueProjectName(ctx, store, input.ClientID, name, ""); err != nil {
			return err
		}
		if err := checkDateOrder(input.StartDate, input.Deadline); err != nil {
			return err
		}

		project = &models.Project{
			ID:          uuid.New().String(),
			ClientID:    input.ClientID,
			Name:        name,
			Description: input.Description,
			StartDate:   input.StartDate,
			Deadline:    input.Deadline,
			Status:      status,
			CreatedAt:   time.Now(),
		}
		if err := store.Projects().Create(ctx, project); err != nil {
			return err
		}
		for _, userID := range input.MemberIDs {
			if err := store.Projects().AddMember(ctx, project.ID, userID); err != nil {
				return mapStoreErr(err, "members", "unknown user in member list")
			}
		}

		project, err = store.Projects().GetByID(ctx, project.ID)
		return err
	})
	if err != nil {
		return nil, mapStoreErr(err, "name", "a project with this name already exists for the client")
	}
	return project, nil
}

// UpdateProjectInput holds the optional fields for a project update. Nil
// fields are left untouched; the Clear flags null out the optional dates.
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	StartDate      *time.Time
	ClearStartDate bool
	Deadline       *time.Time
	ClearDeadline  bool
	Status         *models.ProjectStatus
}

// UpdateProject applies a partial update. A supplied name re-runs the
// uniqueness check excluding the project itself; a supplied date is
// validated against the resulting pair before anything is written.
func (s *Service) UpdateProject(ctx context.Context, id string, input UpdateProjectInput) (*models.Project, error) {
	var project *models.Project
	err := s.store.WithTx(ctx, func(store storage.Store) error {
		var err error
		project, err = store.Projects().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if project == nil {
			return newNotFoundError("project", id)
		}

		if input.Name != nil {
			name, err := trimmedName(*input.Name, "name")
			if err != nil {
				return err
			}
			if err := checkUniqueProjectName(ctx, store, project.ClientID, name, project.ID); err != nil {
				return err
			}
			project.Name = name
		}
		if input.Description != nil {
			project.Description = *input.Description
		}
		switch {
		case input.ClearStartDate:
			project.StartDate = nil
		case input.StartDate != nil:
			project.StartDate = input.StartDate
		}
		switch {
		case input.ClearDeadline:
			project.Deadline = nil
		case input.Deadline != nil:
			project.Deadline = input.Deadline
		}
		if err := checkDateOrder(project.StartDate, project.Deadline); err != nil {
			return err
		}
		if input.Status != nil {
			if !models.ValidProjectStatus(*input.Status) {
				return newValidationError("status", "unknown project status")
			}
			project.Status = *input.Status
		}
		return store.Projects().Update(ctx, project)
	})
	if err != nil {
		return nil, mapStoreErr(err, "name", "a project with this name already exists for the client")
	}
	return project, nil
}

// DeleteProject removes a project together with its tasks and time entries.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	project, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return newNotFoundError("project", id)
	}
	return s.store.Projects().Delete(ctx, id)
}

// GetProject returns a project by id with its member set loaded.
func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, newNotFoundError("project", id)
	}
	return project, nil
}

// ListProjects returns projects matching the filter.
func (s *Service) ListProjects(ctx context.Context, filter storage.ProjectFilter) ([]*models.Project, error) {
	return s.store.Projects().List(ctx, filter)
}

// AddProjectMember adds a user to the project's membership set. Adding an
// existing member is a no-op.
func (s *Service) AddProjectMember(ctx context.Context, projectID, userID string) (*models.Project, error) {
	var project *models.Project
	err := s.store.WithTx(ctx, func(store storage.Store) error {
		var err error
		project, err = store.Projects().GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return newNotFoundError("project", projectID)
		}
		user, err := store.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return newNotFoundError("user", userID)
		}
		if err := store.Projects().AddMember(ctx, projectID, userID); err != nil {
			return err
		}
		project, err = store.Projects().GetByID(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// RemoveProjectMember removes a user from the membership set and, in the
// same transaction, clears that user's assignments on the project's tasks.
// Removing a non-member is a no-op.
func (s *Service) RemoveProjectMember(ctx context.Context, projectID, userID string) (*models.Project, error) {
	var project *models.Project
	err := s.store.WithTx(ctx, func(store storage.Store) error {
		var err error
		project, err = store.Projects().GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return newNotFoundError("project", projectID)
		}
		if _, err := store.Projects().RemoveMember(ctx, projectID, userID); err != nil {
			return err
		}
		if _, err := store.Tasks().ClearAssigneeForUser(ctx, projectID, userID); err != nil {
			return err
		}
		project, err = store.Projects().GetByID(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetProjectMembers returns the project's members ordered by username.
func (s *Service) GetProjectMembers(ctx context.Context, projectID string) ([]*models.ProjectMember, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, newNotFoundError("project", projectID)
	}
	return s.store.Projects().GetMembers(ctx, projectID)
}

// ProjectsForUser returns the projects where the user is a member.
func (s *Service) ProjectsForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	return s.store.Projects().GetProjectsForUser(ctx, userID)
}

// IsProjectMember reports whether the user belongs to the project.
func (s *Service) IsProjectMember(ctx context.Context, projectID, userID string) (bool, error) {
	return s.store.Projects().IsMember(ctx, projectID, userID)
}
