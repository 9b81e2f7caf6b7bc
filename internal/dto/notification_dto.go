package dto

import "time"

// NotificationDTO is a real-time push delivered over the websocket hub.
type NotificationDTO struct {
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
