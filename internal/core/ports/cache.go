package ports

import (
	"context"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

// EntityCache is the shared view cache the admin UI reads. Only the
// optimistic mutation controller writes entity values; everything else reads.
// A missing entity or list is reported as domain.ErrEntityNotFound.
type EntityCache interface {
	GetEntity(ctx context.Context, entityType domain.EntityType, id string) ([]byte, error)
	PutEntity(ctx context.Context, entityType domain.EntityType, id string, value []byte) error
	DeleteEntity(ctx context.Context, entityType domain.EntityType, id string) error

	GetList(ctx context.Context, name string) ([]byte, error)
	PutList(ctx context.Context, name string, value []byte) error
	InvalidateList(ctx context.Context, name string) error
}
