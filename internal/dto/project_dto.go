package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=255"`
	Description string              `json:"description"`
	Files       []ProjectFileUpload `json:"files" validate:"required,min=1,dive"`
}

type ProjectFileUpload struct {
	Path    string `json:"path" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type CreateProjectResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type GetAllProjectsResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ChunkCount  int        `json:"chunk_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ShowProjectResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ChunkCount  int        `json:"chunk_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// PublishIndexProjectMessage is the payload queued for the indexing consumer.
type PublishIndexProjectMessage struct {
	ProjectId uuid.UUID           `json:"project_id"`
	Files     []ProjectFileUpload `json:"files"`
}
