package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CodeChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Source     string          `gorm:"type:varchar(1024);not null"`
	Language   string          `gorm:"type:varchar(64)"`
	Content    string          `gorm:"type:text;not null"`
	ChunkIndex int             `gorm:"default:0"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

func (CodeChunk) TableName() string {
	return "code_chunks"
}
