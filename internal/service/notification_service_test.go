package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/pkg/events"
)

type fakeDelivery struct {
	sentTo        []uuid.UUID
	notifications []dto.NotificationDTO
}

func (f *fakeDelivery) Send(userID uuid.UUID, notification dto.NotificationDTO) {
	f.sentTo = append(f.sentTo, userID)
	f.notifications = append(f.notifications, notification)
}

func (f *fakeDelivery) Broadcast(notification dto.NotificationDTO) {
	f.notifications = append(f.notifications, notification)
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestHandleEventProjectIndexed(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		eventType string
	}{
		{"bare event code", "PROJECT_INDEXED"},
		{"full subject off the wire", "events.PROJECT_INDEXED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delivery := &fakeDelivery{}
			svc := NewNotificationService(nil, delivery, nopLogger{})

			evt := events.BaseEvent{
				Type: tt.eventType,
				Data: map[string]interface{}{
					"user_id":     userID.String(),
					"project_id":  uuid.New().String(),
					"status":      "ready",
					"chunk_count": 12,
				},
				OccurredAt: time.Now(),
			}

			err := svc.handleEvent(context.Background(), evt)
			require.NoError(t, err)

			require.Len(t, delivery.sentTo, 1)
			assert.Equal(t, userID, delivery.sentTo[0])
			assert.Equal(t, "PROJECT_INDEXED", delivery.notifications[0].Type)
			assert.Equal(t, "Project indexed", delivery.notifications[0].Title)
		})
	}
}

func TestHandleEventProjectIndexedFailedStatus(t *testing.T) {
	delivery := &fakeDelivery{}
	svc := NewNotificationService(nil, delivery, nopLogger{})

	evt := events.BaseEvent{
		Type: "events.PROJECT_INDEXED",
		Data: map[string]interface{}{
			"user_id": uuid.New().String(),
			"status":  "failed",
		},
		OccurredAt: time.Now(),
	}

	require.NoError(t, svc.handleEvent(context.Background(), evt))
	require.Len(t, delivery.notifications, 1)
	assert.Equal(t, "Project indexing failed", delivery.notifications[0].Title)
}

func TestHandleEventInvalidUserIdDropped(t *testing.T) {
	delivery := &fakeDelivery{}
	svc := NewNotificationService(nil, delivery, nopLogger{})

	evt := events.BaseEvent{
		Type:       "events.PROJECT_INDEXED",
		Data:       map[string]interface{}{"user_id": "not-a-uuid"},
		OccurredAt: time.Now(),
	}

	require.NoError(t, svc.handleEvent(context.Background(), evt))
	assert.Empty(t, delivery.notifications)
}
