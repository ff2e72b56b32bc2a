package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/observability/metrics"
)

// MatchService asks the external scorer for ranked therapist suggestions.
// The scorer is a black box: an empty list is a valid answer, not an error.
type MatchService struct {
	store  *store
	ranker ports.MatchRanker
}

var _ ports.MatchService = (*MatchService)(nil)

func NewMatchService(cache ports.EntityCache, backend ports.PlatformBackend, ranker ports.MatchRanker) *MatchService {
	return &MatchService{
		store:  newStore(cache, backend),
		ranker: ranker,
	}
}

func (s *MatchService) Recommend(ctx context.Context, clientID string) ([]domain.MatchRecommendation, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: clientId is required", domain.ErrValidation)
	}

	client, err := s.store.Client(ctx, clientID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	recommendations, err := s.ranker.Rank(ctx, ports.RankRequest{
		ClientID:         client.ID,
		Concerns:         client.Concerns,
		Preferences:      client.Preferences,
		ProfileCompleted: client.ProfileCompleted,
	})
	if err != nil {
		metrics.ObserveRanking("error", time.Since(start))
		return nil, err
	}

	if len(recommendations) == 0 {
		metrics.ObserveRanking("empty", time.Since(start))
		return []domain.MatchRecommendation{}, nil
	}

	// The scorer promises descending order; sort anyway so a misbehaving
	// scorer cannot reorder the admin view.
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].MatchScore > recommendations[j].MatchScore
	})

	metrics.ObserveRanking("ok", time.Since(start))
	return recommendations, nil
}
