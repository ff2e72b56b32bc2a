package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/optimistic"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

// Dependent list views held in the shared cache.
const (
	ListEnquiries  = "enquiries"
	ListClients    = "clients"
	ListTherapists = "therapists"
)

// store mediates reads between the shared cache and the platform backend.
// It writes list keys only; entity keys belong to the optimistic mutation
// controller, the cache's single entity writer.
type store struct {
	cache   ports.EntityCache
	backend ports.PlatformBackend
}

func newStore(cache ports.EntityCache, backend ports.PlatformBackend) *store {
	return &store{cache: cache, backend: backend}
}

// NewListRefresher returns the refetch hook the mutation controller runs
// after invalidating a dependent list view.
func NewListRefresher(cache ports.EntityCache, backend ports.PlatformBackend) optimistic.ListRefresher {
	s := newStore(cache, backend)
	return s.Refresh
}

func (s *store) Enquiries(ctx context.Context) ([]domain.Enquiry, error) {
	if raw, err := s.cache.GetList(ctx, ListEnquiries); err == nil {
		var list []domain.Enquiry
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}

	list, err := s.backend.ListEnquiries(ctx)
	if err != nil {
		return nil, err
	}
	s.putList(ctx, ListEnquiries, list)
	return list, nil
}

func (s *store) Clients(ctx context.Context) ([]domain.Client, error) {
	if raw, err := s.cache.GetList(ctx, ListClients); err == nil {
		var list []domain.Client
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}

	list, err := s.backend.ListClients(ctx, "")
	if err != nil {
		return nil, err
	}
	s.putList(ctx, ListClients, list)
	return list, nil
}

func (s *store) Therapists(ctx context.Context) ([]domain.Therapist, error) {
	if raw, err := s.cache.GetList(ctx, ListTherapists); err == nil {
		var list []domain.Therapist
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}

	list, err := s.backend.ListAvailableTherapists(ctx)
	if err != nil {
		return nil, err
	}
	s.putList(ctx, ListTherapists, list)
	return list, nil
}

// Enquiry resolves a single enquiry: the entity key first (it carries any
// tentative or freshly committed value), then the cached list, then the
// backend.
func (s *store) Enquiry(ctx context.Context, id string) (*domain.Enquiry, error) {
	if raw, err := s.cache.GetEntity(ctx, domain.EntityEnquiry, id); err == nil {
		var e domain.Enquiry
		if err := json.Unmarshal(raw, &e); err == nil {
			return &e, nil
		}
	} else if !errors.Is(err, domain.ErrEntityNotFound) {
		log.Printf("store: enquiry cache read failed for %s: %v", id, err)
	}

	list, err := s.Enquiries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

func (s *store) Client(ctx context.Context, id string) (*domain.Client, error) {
	if raw, err := s.cache.GetEntity(ctx, domain.EntityClient, id); err == nil {
		var c domain.Client
		if err := json.Unmarshal(raw, &c); err == nil {
			return &c, nil
		}
	} else if !errors.Is(err, domain.ErrEntityNotFound) {
		log.Printf("store: client cache read failed for %s: %v", id, err)
	}

	list, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

// Refresh refetches one list view from the backend into the cache.
func (s *store) Refresh(ctx context.Context, list string) error {
	switch list {
	case ListEnquiries:
		data, err := s.backend.ListEnquiries(ctx)
		if err != nil {
			return err
		}
		s.putList(ctx, ListEnquiries, data)
	case ListClients:
		data, err := s.backend.ListClients(ctx, "")
		if err != nil {
			return err
		}
		s.putList(ctx, ListClients, data)
	case ListTherapists:
		data, err := s.backend.ListAvailableTherapists(ctx)
		if err != nil {
			return err
		}
		s.putList(ctx, ListTherapists, data)
	}
	return nil
}

func (s *store) putList(ctx context.Context, name string, list any) {
	raw, err := json.Marshal(list)
	if err != nil {
		log.Printf("store: marshal %q list: %v", name, err)
		return
	}
	if err := s.cache.PutList(ctx, name, raw); err != nil {
		log.Printf("store: cache %q list: %v", name, err)
	}
}
