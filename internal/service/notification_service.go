package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/internal/pkg/logger"
	"bytebuddhi-be/pkg/events"
	pktNats "bytebuddhi-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.NotificationDTO)
	Broadcast(notification dto.NotificationDTO)
}

type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	if s.delivery == nil {
		return nil
	}

	payload := event.Payload()

	// Events arriving off the wire carry the full NATS subject
	// ("events.PROJECT_INDEXED"), locally constructed ones just the code.
	eventType := strings.TrimPrefix(event.EventType(), "events.")

	switch eventType {
	case "PROJECT_INDEXED":
		userID, err := uuid.Parse(fmt.Sprint(payload["user_id"]))
		if err != nil {
			s.logger.Warn("NotificationService", "PROJECT_INDEXED event without valid user_id", map[string]interface{}{"payload": payload})
			return nil
		}

		status, _ := payload["status"].(string)
		title := "Project indexed"
		message := "Your project is ready. Ask away!"
		if status == "failed" {
			title = "Project indexing failed"
			message = "We couldn't index your project. Please try uploading it again."
		}

		s.delivery.Send(userID, dto.NotificationDTO{
			Type:      "PROJECT_INDEXED",
			Title:     title,
			Message:   message,
			Data:      payload,
			CreatedAt: time.Now(),
		})

	default:
		// Other events carry no real-time push today.
	}

	return nil
}
