package mocks

import (
	"time"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

// Shared fixtures for unit tests.

func SampleEnquiry(id string, status domain.EnquiryStatus) domain.Enquiry {
	return domain.Enquiry{
		ID:        id,
		FirstName: "Maya",
		LastName:  "Osei",
		Email:     "maya.osei@example.com",
		Status:    status,
		CreatedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	}
}

func SampleClient(id string, status domain.ClientStatus, therapistID string) domain.Client {
	return domain.Client{
		ID:                  id,
		Name:                "Jordan Blake",
		Email:               "jordan.blake@example.com",
		Status:              status,
		AssignedTherapistID: therapistID,
		ProfileCompleted:    true,
		Concerns:            []string{"anxiety"},
		Preferences:         domain.Preferences{Gender: "any", Approach: "cbt"},
		CreatedAt:           time.Date(2025, 4, 2, 14, 0, 0, 0, time.UTC),
	}
}

func SampleTherapist(id string, capacity int) domain.Therapist {
	return domain.Therapist{
		ID:              id,
		Name:            "Dr. Sam Whitfield",
		Email:           "sam.whitfield@example.com",
		Specialisations: []string{"anxiety", "depression"},
		Tier:            domain.TierPsychotherapist,
		HourlyRate:      6500,
		Availability:    "weekdays",
		Capacity:        capacity,
	}
}
