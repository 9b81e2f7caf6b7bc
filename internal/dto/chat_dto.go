package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllConversationsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ProjectId *uuid.UUID `json:"project_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID           `json:"id"`
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
	Metadata  *MessageMetadataDTO `json:"metadata,omitempty"`
}

type MessageMetadataDTO struct {
	Intent        string      `json:"intent,omitempty"`
	Trace         []string    `json:"trace,omitempty"`
	Sources       []SourceDTO `json:"sources,omitempty"`
	GeneratedCode bool        `json:"generated_code,omitempty"`
	Degraded      bool        `json:"degraded,omitempty"`
	FailedStage   string      `json:"failed_stage,omitempty"`
}

type SourceDTO struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type SendChatRequest struct {
	ConversationId *uuid.UUID `json:"conversation_id"`
	ProjectId      *uuid.UUID `json:"project_id"`
	Query          string     `json:"query" validate:"required"`
}

type SendChatResponseMessage struct {
	Id        uuid.UUID           `json:"id"`
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
	Metadata  *MessageMetadataDTO `json:"metadata,omitempty"`
}

type SendChatResponse struct {
	ConversationId    uuid.UUID                `json:"conversation_id"`
	ConversationTitle string                   `json:"title"`
	Sent              *SendChatResponseMessage `json:"sent"`
	Reply             *SendChatResponseMessage `json:"reply"`
}

// StreamEvent is one server-sent event on the streaming chat endpoint.
type StreamEvent struct {
	Type  string            `json:"type"` // "delta" | "done" | "error"
	Delta string            `json:"delta,omitempty"`
	Done  *SendChatResponse `json:"done,omitempty"`
	Error string            `json:"error,omitempty"`
}
