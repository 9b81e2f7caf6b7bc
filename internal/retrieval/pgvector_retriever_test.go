package retrieval

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/repository/contract"
	"bytebuddhi-be/internal/repository/specification"
	"bytebuddhi-be/internal/repository/unitofwork"
	"bytebuddhi-be/pkg/llm"
)

type stubChunkRepo struct {
	scored     []*contract.ScoredCodeChunk
	gotLimit   int
	gotProject uuid.UUID
}

func (s *stubChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.CodeChunk) error {
	return nil
}

func (s *stubChunkRepo) DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error {
	return nil
}

func (s *stubChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (s *stubChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID) ([]*contract.ScoredCodeChunk, error) {
	s.gotLimit = limit
	s.gotProject = projectId
	return s.scored, nil
}

type stubUow struct {
	chunks contract.CodeChunkRepository
}

func (u *stubUow) Begin(ctx context.Context) error { return nil }
func (u *stubUow) Commit() error                   { return nil }
func (u *stubUow) Rollback() error                 { return nil }

func (u *stubUow) UserRepository() contract.UserRepository                 { return nil }
func (u *stubUow) ProjectRepository() contract.ProjectRepository           { return nil }
func (u *stubUow) CodeChunkRepository() contract.CodeChunkRepository       { return u.chunks }
func (u *stubUow) ConversationRepository() contract.ConversationRepository { return nil }
func (u *stubUow) MessageRepository() contract.MessageRepository           { return nil }

type stubFactory struct {
	uow unitofwork.UnitOfWork
}

func (f *stubFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type stubEmbedder struct{}

func (stubEmbedder) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", nil
}

func (stubEmbedder) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", nil
}

func (stubEmbedder) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	return nil, nil
}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestRetrieveMapsScoredChunksToFragments(t *testing.T) {
	projectId := uuid.New()
	repo := &stubChunkRepo{scored: []*contract.ScoredCodeChunk{
		{
			Chunk:      &entity.CodeChunk{Source: "handler.go", Content: "func Handle() {}"},
			Similarity: 0.9375,
		},
		{
			Chunk:      &entity.CodeChunk{Source: "main.go", Content: "func main() {}"},
			Similarity: 0.5,
		},
	}}

	retriever := NewPgVectorRetriever(&stubFactory{uow: &stubUow{chunks: repo}}, stubEmbedder{})

	fragments, err := retriever.Retrieve(context.Background(), "how is the handler wired?", projectId, 8)
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	assert.Equal(t, "handler.go", fragments[0].Source)
	assert.Equal(t, "func Handle() {}", fragments[0].Content)
	assert.Equal(t, float32(0.9375), fragments[0].Score)
	assert.Equal(t, float32(0.5), fragments[1].Score)

	assert.Equal(t, 8, repo.gotLimit)
	assert.Equal(t, projectId, repo.gotProject)
}
