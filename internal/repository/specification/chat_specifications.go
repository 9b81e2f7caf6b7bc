package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByConversationId scopes messages to one conversation
type ByConversationId struct {
	ConversationId uuid.UUID
}

func (s ByConversationId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationId)
}

// ByProjectId scopes chunks or conversations to one project
type ByProjectId struct {
	ProjectId uuid.UUID
}

func (s ByProjectId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectId)
}
