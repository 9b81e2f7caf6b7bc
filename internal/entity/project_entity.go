package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusPending  ProjectStatus = "pending"
	ProjectStatusIndexing ProjectStatus = "indexing"
	ProjectStatusReady    ProjectStatus = "ready"
	ProjectStatusFailed   ProjectStatus = "failed"
)

type Project struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Name        string
	Description string
	Status      ProjectStatus
	ChunkCount  int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// CodeChunk is one indexed slice of a project source file, embedded for
// similarity search.
type CodeChunk struct {
	Id         uuid.UUID
	ProjectId  uuid.UUID
	Source     string
	Language   string
	Content    string
	ChunkIndex int
	Embedding  []float32
	CreatedAt  time.Time
}
