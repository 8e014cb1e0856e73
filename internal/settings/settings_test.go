package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrs-suite/hrs/internal/shared"
)

type fakeRepo struct {
	values map[string]string
	err    error
}

func (f fakeRepo) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	value, ok := f.values[key]
	if !ok {
		return "", shared.ErrNotFound
	}
	return value, nil
}

func TestGetOrDefaultStoredValue(t *testing.T) {
	svc := NewService(fakeRepo{values: map[string]string{"company_name": "Acme HR"}}, nil)
	assert.Equal(t, "Acme HR", svc.GetOrDefault(context.Background(), "company_name", "HRS"))
}

func TestGetOrDefaultMissingKey(t *testing.T) {
	svc := NewService(fakeRepo{}, nil)
	assert.Equal(t, "HRS", svc.GetOrDefault(context.Background(), "company_name", "HRS"))
}

func TestGetOrDefaultStorageFailure(t *testing.T) {
	svc := NewService(fakeRepo{err: errors.New("connection refused")}, nil)
	assert.Equal(t, "HRS", svc.GetOrDefault(context.Background(), "company_name", "HRS"))
}

func TestGetPropagatesErrors(t *testing.T) {
	svc := NewService(fakeRepo{}, nil)
	_, err := svc.Get(context.Background(), "company_name")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
