// Package settings exposes the simple key-value application configuration
// stored in postgres, such as the company display name.
package settings

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrs-suite/hrs/internal/shared"
)

// RepositoryPort defines data access for settings.
type RepositoryPort interface {
	Get(ctx context.Context, key string) (string, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a setting value by key.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Service reads settings with degrade-to-default semantics: display config
// is never worth failing a request over.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get fetches a setting value by key.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, key)
}

// GetOrDefault returns the stored value, or the fallback when the key is
// missing or the read fails. Storage failures are logged, not propagated.
func (s *Service) GetOrDefault(ctx context.Context, key, fallback string) string {
	value, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && s.logger != nil {
			s.logger.Warn("read setting", slog.String("key", key), slog.Any("error", err))
		}
		return fallback
	}
	return value
}
