package ports

import (
	"context"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

type RankRequest struct {
	ClientID         string             `json:"clientId"`
	Concerns         []string           `json:"concerns,omitempty"`
	Preferences      domain.Preferences `json:"preferences"`
	ProfileCompleted bool               `json:"profileCompleted"`
}

// MatchRanker scores eligible therapists for a client. The scorer is a black
// box: an empty result is a valid outcome, scores arrive as integer
// percentages, and the reasoning string may be absent.
type MatchRanker interface {
	Rank(ctx context.Context, req RankRequest) ([]domain.MatchRecommendation, error)
}
