package messaging

import (
	"context"
	"testing"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

func TestPublishOnDisconnectedBrokerReturnsError(t *testing.T) {
	evt := ports.AssignmentCreatedEvent{
		AssignmentID: "A1",
		ClientID:     "C1",
		TherapistID:  "T1",
	}

	t.Run("nil broker", func(t *testing.T) {
		var b *RabbitMQBroker
		if err := b.PublishAssignmentCreated(context.Background(), evt); err == nil {
			t.Fatal("expected an error publishing on a nil broker")
		}
	})

	t.Run("broker without channel", func(t *testing.T) {
		b := &RabbitMQBroker{}
		if err := b.PublishAssignmentCreated(context.Background(), evt); err == nil {
			t.Fatal("expected an error publishing without an open channel")
		}
	})
}
