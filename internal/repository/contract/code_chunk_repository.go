package contract

import (
	"context"

	"github.com/google/uuid"

	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/repository/specification"
)

// ScoredCodeChunk pairs a chunk with its cosine similarity to a query vector.
type ScoredCodeChunk struct {
	Chunk      *entity.CodeChunk
	Similarity float64
}

type CodeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.CodeChunk) error
	DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID) ([]*ScoredCodeChunk, error)
}
