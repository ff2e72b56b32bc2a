// Package backend is the REST adapter for the authoritative therapy-platform
// API. Every call runs behind a circuit breaker; HTTP failures are mapped
// onto the domain error taxonomy so the core never inspects status codes.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
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

var _ ports.PlatformBackend = (*Client)(nil)

func NewClient(baseURL, apiToken string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if apiToken != "" {
		httpClient.SetAuthToken(apiToken)
	}

	return &Client{
		http: httpClient,
		cb:   config.NewCircuitBreaker("Platform-Backend"),
	}
}

func (c *Client) ListEnquiries(ctx context.Context) ([]domain.Enquiry, error) {
	var out []domain.Enquiry
	err := c.execute(nil, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetResult(&out).
			Get("/api/admin/therapist-enquiries")
	})
	return out, err
}

func (c *Client) UpdateEnquiryStatus(ctx context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error) {
	var out domain.Enquiry
	err := c.execute(nil, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(map[string]string{"status": string(status)}).
			SetResult(&out).
			Put(fmt.Sprintf("/api/admin/therapist-enquiries/%s/status", id))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEnquiryTier(ctx context.Context, id string, tier domain.Tier) (*domain.Enquiry, error) {
	var out domain.Enquiry
	err := c.execute(nil, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(map[string]string{"therapist_tier": string(tier)}).
			SetResult(&out).
			Put(fmt.Sprintf("/api/admin/therapist-enquiries/%s/tier", id))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTherapistAccount(ctx context.Context, req ports.CreateAccountRequest) (*ports.CreateAccountResult, error) {
	var out ports.CreateAccountResult
	err := c.execute(nil, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&out).
			Post("/api/admin/create-therapist-account")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetTherapistPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		TempPassword string `json:"tempPassword"`
	}
	err := c.execute(nil, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(map[string]string{"email": email}).
			SetResult(&out).
			Post("/api/admin/reset-therapist-password")
	})
	return out.TempPassword, err
}

func (c *Client) ListClients(ctx context.Context, status domain.ClientStatus) ([]domain.Client, error) {
	var out []domain.Client
	err := c.execute(nil, func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx).SetResult(&out)
		if status != "" {
			req.SetQueryParam("status", string(status))
		}
		return req.Get("/api/admin/clients")
	})
	return out, err
}

func (c *Client) ListAvailableTherapists(ctx context.Context) ([]domain.Therapist, error) {
	var out []domain.Therapist
	err := c.execute(nil, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("status", "available").
			SetResult(&out).
			Get("/api/admin/therapists")
	})
	return out, err
}

func (c *Client) AssignTherapist(ctx context.Context, req ports.AssignRequest) (*ports.AssignResult, error) {
	var out ports.AssignResult
	err := c.execute(domain.ErrClientAlreadyAssigned, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeader("Idempotency-Key", req.IdempotencyKey).
			SetBody(req).
			SetResult(&out).
			Post("/api/admin/assign-therapist")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RevokeAssignment(ctx context.Context, clientID, idempotencyKey string) (*domain.Client, error) {
	var out domain.Client
	err := c.execute(domain.ErrClientAlreadyAssigned, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeader("Idempotency-Key", idempotencyKey).
			SetBody(map[string]string{"clientId": clientID}).
			SetResult(&out).
			Post("/api/admin/revoke-assignment")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// execute runs one request through the circuit breaker and maps error
// responses onto the domain taxonomy. conflict is the sentinel an HTTP 409
// unwraps to for this endpoint: only the assignment calls mean "client
// already assigned", a 409 anywhere else is a state conflict on the record.
func (c *Client) execute(conflict error, call func() (*resty.Response, error)) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := call()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
		if resp.IsError() {
			return nil, mapErrorResponse(resp, conflict)
		}
		return nil, nil
	})
	return err
}

func mapErrorResponse(resp *resty.Response, conflict error) error {
	body := strings.ToLower(resp.String())

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests || strings.Contains(body, "rate limit"):
		return fmt.Errorf("%w: HTTP %d", domain.ErrRateLimited, resp.StatusCode())
	case resp.StatusCode() == http.StatusConflict:
		if conflict == nil {
			conflict = domain.ErrInvalidTransition
		}
		return fmt.Errorf("%w: HTTP 409", conflict)
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%w: HTTP 404", domain.ErrEntityNotFound)
	case resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: HTTP %d", domain.ErrValidation, resp.StatusCode())
	default:
		return fmt.Errorf("%w: HTTP %d", domain.ErrBackendUnavailable, resp.StatusCode())
	}
}
