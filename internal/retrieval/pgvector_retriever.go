// Package retrieval wires the workflow's code-context port to the pgvector
// chunk index: embed the query, then rank the project's chunks by cosine
// similarity.
package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bytebuddhi-be/internal/repository/unitofwork"
	"bytebuddhi-be/pkg/llm"
	"bytebuddhi-be/pkg/retrieval"
)

type PgVectorRetriever struct {
	repoFactory unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
}

func NewPgVectorRetriever(repoFactory unitofwork.RepositoryFactory, llmProvider llm.LLMProvider) retrieval.Retriever {
	return &PgVectorRetriever{
		repoFactory: repoFactory,
		llmProvider: llmProvider,
	}
}

func (r *PgVectorRetriever) Retrieve(ctx context.Context, query string, projectId uuid.UUID, maxFragments int) ([]retrieval.Fragment, error) {
	embedding, err := r.llmProvider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := r.repoFactory.NewUnitOfWork(ctx)
	scored, err := uow.CodeChunkRepository().SearchSimilar(ctx, embedding, maxFragments, projectId)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	fragments := make([]retrieval.Fragment, len(scored))
	for i, s := range scored {
		fragments[i] = retrieval.Fragment{
			Source:  s.Chunk.Source,
			Content: s.Chunk.Content,
			Score:   float32(s.Similarity),
		}
	}
	return fragments, nil
}
