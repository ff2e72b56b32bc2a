// Package matcher is the REST adapter for the external AI match scorer.
package matcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/config"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

type Client struct {
	http *resty.Client
	cb   *gobreaker.CircuitBreaker
}

var _ ports.MatchRanker = (*Client)(nil)

func NewClient(baseURL, apiToken string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		// Scoring can be slow; bounded well under the mutation timeout since
		// ranking is read-only.
		SetTimeout(12 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if apiToken != "" {
		httpClient.SetAuthToken(apiToken)
	}

	return &Client{
		http: httpClient,
		cb:   config.NewCircuitBreaker("Match-Scorer"),
	}
}

// Rank requests scored candidates for a client. An empty result is returned
// as an empty slice, never as an error.
func (c *Client) Rank(ctx context.Context, req ports.RankRequest) ([]domain.MatchRecommendation, error) {
	var out []domain.MatchRecommendation
	_, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&out).
			Post("/api/admin/ai-recommendations")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: HTTP 429", domain.ErrRateLimited)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: scorer returned HTTP %d", domain.ErrBackendUnavailable, resp.StatusCode())
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.MatchRecommendation{}
	}
	return out, nil
}
