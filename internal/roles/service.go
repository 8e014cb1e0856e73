package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hrs-suite/hrs/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	Count(ctx context.Context) (int64, error)
	CountFiltered(ctx context.Context, filters ListFilters) (int64, error)
	List(ctx context.Context, filters ListFilters) ([]Role, error)
	Get(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, p CreateParams) (Role, error)
	Update(ctx context.Context, id int64, p UpdateParams) (Role, error)
	Delete(ctx context.Context, id int64) error
}

// ListResult bundles a page of roles with the list counters.
type ListResult struct {
	Total    int64
	Filtered int64
	Roles    []Role
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of roles plus total and filtered record counts.
func (s *Service) List(ctx context.Context, filters ListFilters) (ListResult, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return ListResult{}, err
	}
	filtered, err := s.repo.CountFiltered(ctx, filters)
	if err != nil {
		return ListResult{}, err
	}
	list, err := s.repo.List(ctx, filters)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Total: total, Filtered: filtered, Roles: list}, nil
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new role stamped with its creator.
func (s *Service) Create(ctx context.Context, name, description string, permissions []string, createdBy int64) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", shared.ErrValidation)
	}
	role, err := s.repo.Create(ctx, CreateParams{
		Name:            name,
		Description:     strings.TrimSpace(description),
		Permissions:     permissions,
		CreatedByUserID: &createdBy,
	})
	if err != nil {
		return Role{}, mapConstraint(err, "role name already in use")
	}
	return role, nil
}

// Update mutates an existing role.
func (s *Service) Update(ctx context.Context, id int64, name, description string, permissions []string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", shared.ErrValidation)
	}
	role, err := s.repo.Update(ctx, id, UpdateParams{
		Name:        name,
		Description: strings.TrimSpace(description),
		Permissions: permissions,
	})
	if err != nil {
		return Role{}, mapConstraint(err, "role name already in use")
	}
	return role, nil
}

// Delete removes a role by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// mapConstraint converts unique violations into the duplicate sentinel so
// handlers respond with 400 instead of 500.
func mapConstraint(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", shared.ErrDuplicate, message)
	}
	return err
}
