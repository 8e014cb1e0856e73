package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hrs-suite/hrs/internal/auth"
	"github.com/hrs-suite/hrs/internal/authz"
	"github.com/hrs-suite/hrs/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Count(ctx context.Context) (int64, error)
	CountFiltered(ctx context.Context, filters ListFilters) (int64, error)
	List(ctx context.Context, filters ListFilters) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, p CreateParams) (User, error)
	Update(ctx context.Context, id int64, p UpdateParams) (User, error)
	Delete(ctx context.Context, id int64) error
}

// ListResult bundles a page of users with the list counters.
type ListResult struct {
	Total    int64
	Filtered int64
	Users    []User
}

// Service handles user business logic. It also serves as the grant source
// for authorization checks.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of users plus total and filtered record counts.
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
	return ListResult{Total: total, Filtered: filtered, Users: list}, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// CreateInput carries the fields accepted when creating a user.
type CreateInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	RoleID      int64
	Permissions []string
}

// Create hashes the supplied password and inserts a new user.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	if err := validateAccountFields(in.Username, in.Email, in.RoleID); err != nil {
		return User{}, err
	}
	if in.Password == "" {
		return User{}, fmt.Errorf("%w: password is required", shared.ErrValidation)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Create(ctx, CreateParams{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		RoleID:       in.RoleID,
		Permissions:  in.Permissions,
	})
	if err != nil {
		return User{}, mapConstraint(err)
	}
	return user, nil
}

// UpdateInput carries the fields accepted when updating a user. An empty
// Password keeps the stored credential.
type UpdateInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	RoleID      int64
	Permissions []string
}

// Update mutates an existing user, re-hashing the password when supplied.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	if err := validateAccountFields(in.Username, in.Email, in.RoleID); err != nil {
		return User{}, err
	}
	var hash string
	if in.Password != "" {
		var err error
		hash, err = auth.HashPassword(in.Password)
		if err != nil {
			return User{}, err
		}
	}
	user, err := s.repo.Update(ctx, id, UpdateParams{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		RoleID:       in.RoleID,
		Permissions:  in.Permissions,
	})
	if err != nil {
		return User{}, mapConstraint(err)
	}
	return user, nil
}

// Delete removes a user by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Grants loads the authoritative permission sets for a user. A missing user
// maps to shared.ErrNotFound so middleware can answer 401.
func (s *Service) Grants(ctx context.Context, userID int64) (authz.Grants, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return authz.Grants{}, err
	}
	grants := authz.Grants{Override: user.Permissions}
	if user.Role != nil {
		grants.Role = user.Role.Permissions
	}
	return grants, nil
}

var _ authz.GrantSource = (*Service)(nil)

func validateAccountFields(username, email string, roleID int64) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", shared.ErrValidation)
	}
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	if roleID <= 0 {
		return fmt.Errorf("%w: role is required", shared.ErrValidation)
	}
	return nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: username or email already in use", shared.ErrDuplicate)
	}
	return err
}
