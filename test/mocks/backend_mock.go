package mocks

import (
	"context"
	"sync"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

type StatusCall struct {
	ID     string
	Status domain.EnquiryStatus
}

type TierCall struct {
	ID   string
	Tier domain.Tier
}

// MockPlatformBackend implements ports.PlatformBackend over in-memory
// fixtures. Per-method Func hooks take precedence over the default behavior,
// which lets tests block a call mid-flight or fail a specific request.
type MockPlatformBackend struct {
	mu sync.Mutex

	Enquiries  []domain.Enquiry
	Clients    []domain.Client
	Therapists []domain.Therapist

	// Call tracking
	StatusCalls        []StatusCall
	TierCalls          []TierCall
	AssignCalls        []ports.AssignRequest
	RevokeCalls        []string
	CreateAccountCalls []ports.CreateAccountRequest
	ResetPasswordCalls []string

	// Error injection
	ListEnquiriesError  error
	UpdateStatusError   error
	UpdateTierError     error
	CreateAccountError  error
	ResetPasswordError  error
	ListClientsError    error
	ListTherapistsError error
	AssignError         error
	RevokeError         error

	// Hooks overriding the default behavior entirely
	UpdateStatusFunc func(ctx context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error)
	UpdateTierFunc   func(ctx context.Context, id string, tier domain.Tier) (*domain.Enquiry, error)
	AssignFunc       func(ctx context.Context, req ports.AssignRequest) (*ports.AssignResult, error)
}

var _ ports.PlatformBackend = (*MockPlatformBackend)(nil)

func NewMockPlatformBackend() *MockPlatformBackend {
	return &MockPlatformBackend{}
}

func (m *MockPlatformBackend) ListEnquiries(ctx context.Context) ([]domain.Enquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListEnquiriesError != nil {
		return nil, m.ListEnquiriesError
	}
	return append([]domain.Enquiry(nil), m.Enquiries...), nil
}

func (m *MockPlatformBackend) UpdateEnquiryStatus(ctx context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error) {
	m.mu.Lock()
	m.StatusCalls = append(m.StatusCalls, StatusCall{ID: id, Status: status})
	hook := m.UpdateStatusFunc
	m.mu.Unlock()

	if hook != nil {
		return hook(ctx, id, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateStatusError != nil {
		return nil, m.UpdateStatusError
	}
	for i := range m.Enquiries {
		if m.Enquiries[i].ID == id {
			m.Enquiries[i].Status = status
			updated := m.Enquiries[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockPlatformBackend) UpdateEnquiryTier(ctx context.Context, id string, tier domain.Tier) (*domain.Enquiry, error) {
	m.mu.Lock()
	m.TierCalls = append(m.TierCalls, TierCall{ID: id, Tier: tier})
	hook := m.UpdateTierFunc
	m.mu.Unlock()

	if hook != nil {
		return hook(ctx, id, tier)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateTierError != nil {
		return nil, m.UpdateTierError
	}
	for i := range m.Enquiries {
		if m.Enquiries[i].ID == id {
			m.Enquiries[i].TherapistTier = tier
			updated := m.Enquiries[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockPlatformBackend) CreateTherapistAccount(ctx context.Context, req ports.CreateAccountRequest) (*ports.CreateAccountResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateAccountCalls = append(m.CreateAccountCalls, req)

	if m.CreateAccountError != nil {
		return nil, m.CreateAccountError
	}
	for i := range m.Enquiries {
		if m.Enquiries[i].ID == req.EnquiryID {
			m.Enquiries[i].AccountCreated = true
		}
	}
	return &ports.CreateAccountResult{
		TempPassword: "temp-secret-1",
		Message:      "Account created",
	}, nil
}

func (m *MockPlatformBackend) ResetTherapistPassword(ctx context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ResetPasswordCalls = append(m.ResetPasswordCalls, email)

	if m.ResetPasswordError != nil {
		return "", m.ResetPasswordError
	}
	return "temp-secret-2", nil
}

func (m *MockPlatformBackend) ListClients(ctx context.Context, status domain.ClientStatus) ([]domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListClientsError != nil {
		return nil, m.ListClientsError
	}
	if status == "" {
		return append([]domain.Client(nil), m.Clients...), nil
	}
	var out []domain.Client
	for _, c := range m.Clients {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockPlatformBackend) ListAvailableTherapists(ctx context.Context) ([]domain.Therapist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListTherapistsError != nil {
		return nil, m.ListTherapistsError
	}
	return append([]domain.Therapist(nil), m.Therapists...), nil
}

func (m *MockPlatformBackend) AssignTherapist(ctx context.Context, req ports.AssignRequest) (*ports.AssignResult, error) {
	m.mu.Lock()
	m.AssignCalls = append(m.AssignCalls, req)
	hook := m.AssignFunc
	m.mu.Unlock()

	if hook != nil {
		return hook(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AssignError != nil {
		return nil, m.AssignError
	}
	for i := range m.Clients {
		if m.Clients[i].ID == req.ClientID {
			m.Clients[i].Status = domain.ClientAssigned
			m.Clients[i].AssignedTherapistID = req.TherapistID
		}
	}
	return &ports.AssignResult{
		EmailSent: true,
		Assignment: domain.Assignment{
			ID:                   "assignment-" + req.ClientID,
			ClientID:             req.ClientID,
			TherapistID:          req.TherapistID,
			AIRecommendationUsed: req.AIRecommendationUsed,
		},
	}, nil
}

func (m *MockPlatformBackend) RevokeAssignment(ctx context.Context, clientID, idempotencyKey string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RevokeCalls = append(m.RevokeCalls, clientID)

	if m.RevokeError != nil {
		return nil, m.RevokeError
	}
	for i := range m.Clients {
		if m.Clients[i].ID == clientID {
			m.Clients[i].Status = domain.ClientAwaitingAssignment
			m.Clients[i].AssignedTherapistID = ""
			updated := m.Clients[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

// AssignCallCount returns how many times AssignTherapist was invoked.
func (m *MockPlatformBackend) AssignCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AssignCalls)
}

// StatusCallCount returns how many times UpdateEnquiryStatus was invoked.
func (m *MockPlatformBackend) StatusCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.StatusCalls)
}

// TierCallCount returns how many times UpdateEnquiryTier was invoked.
func (m *MockPlatformBackend) TierCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.TierCalls)
}
