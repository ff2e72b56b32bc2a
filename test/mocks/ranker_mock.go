package mocks

import (
	"context"
	"sync"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

// MockMatchRanker implements ports.MatchRanker with canned recommendations.
type MockMatchRanker struct {
	mu sync.Mutex

	Recommendations []domain.MatchRecommendation
	RankError       error
	RankCalls       []ports.RankRequest
}

var _ ports.MatchRanker = (*MockMatchRanker)(nil)

func NewMockMatchRanker() *MockMatchRanker {
	return &MockMatchRanker{}
}

func (m *MockMatchRanker) Rank(ctx context.Context, req ports.RankRequest) ([]domain.MatchRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RankCalls = append(m.RankCalls, req)

	if m.RankError != nil {
		return nil, m.RankError
	}
	return append([]domain.MatchRecommendation(nil), m.Recommendations...), nil
}
