package retrieval

import (
	"context"

	"github.com/google/uuid"
)

// Fragment is a ranked piece of indexed code returned for a query.
type Fragment struct {
	Source  string // file path of the indexed chunk
	Content string
	Score   float32 // relevance, higher is better
}

// Retriever defines the contract for the code context index.
// Fragments are returned ranked by descending relevance score.
type Retriever interface {
	Retrieve(ctx context.Context, query string, projectId uuid.UUID, maxFragments int) ([]Fragment, error)
}
