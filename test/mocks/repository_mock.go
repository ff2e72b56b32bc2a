package mocks

import (
	"context"
	"sync"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

// MockWorkflowRepository implements both ports.AssignmentRepository and
// ports.HistoryRepository over in-memory slices.
type MockWorkflowRepository struct {
	mu sync.Mutex

	Assignments    []domain.Assignment
	OutboxPayloads [][]byte
	HistoryEntries []domain.StatusHistoryEntry

	CreateAssignmentError error
	AppendError           error
	ListHistoryError      error
}

var (
	_ ports.AssignmentRepository = (*MockWorkflowRepository)(nil)
	_ ports.HistoryRepository    = (*MockWorkflowRepository)(nil)
)

func NewMockWorkflowRepository() *MockWorkflowRepository {
	return &MockWorkflowRepository{}
}

func (m *MockWorkflowRepository) CreateAssignment(ctx context.Context, a domain.Assignment, outboxPayload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateAssignmentError != nil {
		return m.CreateAssignmentError
	}
	m.Assignments = append(m.Assignments, a)
	if len(outboxPayload) > 0 {
		m.OutboxPayloads = append(m.OutboxPayloads, outboxPayload)
	}
	return nil
}

func (m *MockWorkflowRepository) LatestForClient(ctx context.Context, clientID string) (*domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.Assignments) - 1; i >= 0; i-- {
		if m.Assignments[i].ClientID == clientID {
			a := m.Assignments[i]
			return &a, nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockWorkflowRepository) ListForClient(ctx context.Context, clientID string) ([]domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Assignment
	for _, a := range m.Assignments {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockWorkflowRepository) Append(ctx context.Context, entry domain.StatusHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendError != nil {
		return m.AppendError
	}
	m.HistoryEntries = append(m.HistoryEntries, entry)
	return nil
}

func (m *MockWorkflowRepository) ListForEntity(ctx context.Context, entityID string) ([]domain.StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListHistoryError != nil {
		return nil, m.ListHistoryError
	}
	var out []domain.StatusHistoryEntry
	for _, e := range m.HistoryEntries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// HistoryCount returns the number of appended history entries across all
// entities.
func (m *MockWorkflowRepository) HistoryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.HistoryEntries)
}

// AssignmentCount returns the number of stored assignment records.
func (m *MockWorkflowRepository) AssignmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Assignments)
}
