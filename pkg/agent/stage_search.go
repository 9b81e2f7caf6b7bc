package agent

import (
	"context"
	"errors"
	"log"

	"bytebuddhi-be/pkg/websearch"
)

// searchMaxResults bounds how many sources are requested from the provider.
const searchMaxResults = 5

// SearchStage gathers live web evidence. Activated only for web_search
// intent; a provider error is recorded and the engine degrades instead of
// aborting.
type SearchStage struct {
	provider websearch.Provider
	logger   *log.Logger
}

func NewSearchStage(provider websearch.Provider, logger *log.Logger) *SearchStage {
	return &SearchStage{
		provider: provider,
		logger:   logger,
	}
}

func (s *SearchStage) Name() string { return StageSearch }

func (s *SearchStage) Run(ctx context.Context, st *RequestState, _ EmitFunc) StageResult {
	evidence, err := s.provider.Search(ctx, st.Query, searchMaxResults, true)
	if err != nil {
		s.logger.Printf("[SEARCH] Provider error: %v", err)
		return failed(StageSearch, failureKind(err), err.Error())
	}

	s.logger.Printf("[SEARCH] %d sources, answer=%t", len(evidence.Sources), evidence.Answer != "")
	return StageResult{Evidence: evidence}
}

// failureKind distinguishes a deadline hit from a plain provider error.
func failureKind(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureTimeout
	}
	return FailureProviderUnavailable
}
