package websearch

import (
	"context"
)

// Source is a single ranked search result in a provider-independent shape.
type Source struct {
	Title   string
	URL     string
	Snippet string
	Score   float32
}

// Evidence is the normalized output of a web search: an optional synthesized
// answer plus ranked sources.
type Evidence struct {
	Answer  string
	Sources []Source
}

// Provider defines the contract for any web search backend
type Provider interface {
	// Search queries the provider for at most maxResults results.
	// includeAnswer requests a synthesized answer when the provider supports it.
	Search(ctx context.Context, query string, maxResults int, includeAnswer bool) (*Evidence, error)
}
