package implementation

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/mapper"
	"bytebuddhi-be/internal/model"
	"bytebuddhi-be/internal/repository/contract"
	"bytebuddhi-be/internal/repository/specification"
)

type CodeChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CodeChunkMapper
}

func NewCodeChunkRepository(db *gorm.DB) contract.CodeChunkRepository {
	return &CodeChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewCodeChunkMapper(),
	}
}

func (r *CodeChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CodeChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.CodeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *CodeChunkRepositoryImpl) DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectId).Delete(&model.CodeChunk{}).Error
}

func (r *CodeChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.CodeChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilar ranks chunks of one project by cosine similarity to the
// query vector. Cosine distance in pgvector is 1 - cosine_similarity, so
// 1 - (embedding <=> query) recovers the similarity.
func (r *CodeChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID) ([]*contract.ScoredCodeChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.CodeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("code_chunks").
		Select("code_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("project_id = ?", projectId).
		Where("deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCodeChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredCodeChunk{
			Chunk:      r.mapper.ToEntity(&res.CodeChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
