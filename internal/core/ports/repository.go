package ports

import (
	"context"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

// AssignmentRepository is the local audit log for assignments. Records are
// appended, never overwritten; the outbox payload is written in the same
// transaction as the assignment row.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, a domain.Assignment, outboxPayload []byte) error
	LatestForClient(ctx context.Context, clientID string) (*domain.Assignment, error)
	ListForClient(ctx context.Context, clientID string) ([]domain.Assignment, error)
}

// HistoryRepository is the append-only status history store.
type HistoryRepository interface {
	Append(ctx context.Context, entry domain.StatusHistoryEntry) error
	ListForEntity(ctx context.Context, entityID string) ([]domain.StatusHistoryEntry, error)
}
