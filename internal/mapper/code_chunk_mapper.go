package mapper

import (
	"github.com/pgvector/pgvector-go"

	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/model"
)

type CodeChunkMapper struct{}

func NewCodeChunkMapper() *CodeChunkMapper {
	return &CodeChunkMapper{}
}

func (m *CodeChunkMapper) ToEntity(c *model.CodeChunk) *entity.CodeChunk {
	if c == nil {
		return nil
	}
	return &entity.CodeChunk{
		Id:         c.Id,
		ProjectId:  c.ProjectId,
		Source:     c.Source,
		Language:   c.Language,
		Content:    c.Content,
		ChunkIndex: c.ChunkIndex,
		Embedding:  c.Embedding.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *CodeChunkMapper) ToModel(c *entity.CodeChunk) *model.CodeChunk {
	if c == nil {
		return nil
	}
	return &model.CodeChunk{
		Id:         c.Id,
		ProjectId:  c.ProjectId,
		Source:     c.Source,
		Language:   c.Language,
		Content:    c.Content,
		ChunkIndex: c.ChunkIndex,
		Embedding:  pgvector.NewVector(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *CodeChunkMapper) ToEntities(chunks []*model.CodeChunk) []*entity.CodeChunk {
	entities := make([]*entity.CodeChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *CodeChunkMapper) ToModels(chunks []*entity.CodeChunk) []*model.CodeChunk {
	models := make([]*model.CodeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
