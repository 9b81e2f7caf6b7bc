package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type Conversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	ProjectId *uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// MessageMetadata captures how an assistant answer was produced.
type MessageMetadata struct {
	Intent        string          `json:"intent,omitempty"`
	Trace         []string        `json:"trace,omitempty"`
	Sources       []MessageSource `json:"sources,omitempty"`
	GeneratedCode bool            `json:"generated_code,omitempty"`
	Degraded      bool            `json:"degraded,omitempty"`
	FailedStage   string          `json:"failed_stage,omitempty"`
}

type MessageSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           MessageRole
	Content        string
	Metadata       *MessageMetadata
	CreatedAt      time.Time
}
