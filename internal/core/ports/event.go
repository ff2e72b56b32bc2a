package ports

import (
	"context"
)

// AssignmentCreatedEventType tags outbox rows carrying an
// AssignmentCreatedEvent payload.
const AssignmentCreatedEventType = "assignment_created"

// AssignmentCreatedEvent is the notification payload written to the outbox
// when an assignment commits. The relay delivers it to the notification
// collaborator, which emails both parties.
type AssignmentCreatedEvent struct {
	AssignmentID         string `json:"assignment_id"`
	ClientID             string `json:"client_id"`
	ClientEmail          string `json:"client_email"`
	TherapistID          string `json:"therapist_id"`
	TherapistEmail       string `json:"therapist_email"`
	AIRecommendationUsed bool   `json:"ai_recommendation_used"`
}

type AssignmentEventPublisher interface {
	PublishAssignmentCreated(ctx context.Context, evt AssignmentCreatedEvent) error
}
