package mocks

import (
	"context"
	"sync"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

// MockAssignmentPublisher implements ports.AssignmentEventPublisher.
type MockAssignmentPublisher struct {
	mu sync.Mutex

	PublishedEvents []ports.AssignmentCreatedEvent
	PublishError    error
}

var _ ports.AssignmentEventPublisher = (*MockAssignmentPublisher)(nil)

func NewMockAssignmentPublisher() *MockAssignmentPublisher {
	return &MockAssignmentPublisher{}
}

func (m *MockAssignmentPublisher) PublishAssignmentCreated(ctx context.Context, evt ports.AssignmentCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// PublishedCount returns how many events were accepted.
func (m *MockAssignmentPublisher) PublishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PublishedEvents)
}
