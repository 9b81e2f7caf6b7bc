package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PROJECT_INDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used when reconstructing events
// from the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// ProjectIndexedEvent fires when a project finished (or failed) indexing.
type ProjectIndexedEvent struct {
	ProjectId  uuid.UUID
	UserId     uuid.UUID
	Status     string
	ChunkCount int
	OccurredAt time.Time
}

func (e ProjectIndexedEvent) EventType() string {
	return "PROJECT_INDEXED"
}

func (e ProjectIndexedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"project_id":  e.ProjectId.String(),
		"user_id":     e.UserId.String(),
		"status":      e.Status,
		"chunk_count": e.ChunkCount,
	}
}

func (e ProjectIndexedEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// UserRegisteredEvent fires after a successful signup.
type UserRegisteredEvent struct {
	UserId     uuid.UUID
	Email      string
	OccurredAt time.Time
}

func (e UserRegisteredEvent) EventType() string {
	return "USER_REGISTERED"
}

func (e UserRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserId.String(),
		"email":   e.Email,
	}
}

func (e UserRegisteredEvent) Timestamp() time.Time {
	return e.OccurredAt
}
