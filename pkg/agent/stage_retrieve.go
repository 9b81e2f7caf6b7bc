package agent

import (
	"context"
	"log"

	"bytebuddhi-be/pkg/retrieval"
)

const (
	// retrieveMaxFragments bounds how many chunks are requested from the index.
	retrieveMaxFragments = 8

	// retrieveCharBudget caps the total characters handed to the response
	// prompt. Lowest-score fragments are dropped first.
	retrieveCharBudget = 6000
)

// RetrieveStage loads ranked code context for the query. The router only
// sends requests here when a project scope is present, so the stage never
// sees an empty scope.
type RetrieveStage struct {
	retriever retrieval.Retriever
	logger    *log.Logger
}

func NewRetrieveStage(retriever retrieval.Retriever, logger *log.Logger) *RetrieveStage {
	return &RetrieveStage{
		retriever: retriever,
		logger:    logger,
	}
}

func (s *RetrieveStage) Name() string { return StageRetrieve }

func (s *RetrieveStage) Run(ctx context.Context, st *RequestState, _ EmitFunc) StageResult {
	fragments, err := s.retriever.Retrieve(ctx, st.Query, *st.ProjectId, retrieveMaxFragments)
	if err != nil {
		s.logger.Printf("[RETRIEVE] Provider error: %v", err)
		return failed(StageRetrieve, failureKind(err), err.Error())
	}

	kept := truncateFragments(fragments, retrieveCharBudget)
	s.logger.Printf("[RETRIEVE] %d fragments retrieved, %d kept within budget", len(fragments), len(kept))

	return StageResult{Fragments: kept}
}

// truncateFragments keeps the highest-score fragments whose contents fit the
// character budget. Fragments arrive ranked by descending score, so dropping
// from the tail drops the least relevant first.
func truncateFragments(fragments []retrieval.Fragment, budget int) []retrieval.Fragment {
	var kept []retrieval.Fragment
	total := 0
	for _, f := range fragments {
		if total+len(f.Content) > budget {
			break
		}
		total += len(f.Content)
		kept = append(kept, f)
	}

	// An oversized top fragment still beats no context at all.
	if len(kept) == 0 && len(fragments) > 0 {
		top := fragments[0]
		top.Content = top.Content[:budget]
		kept = append(kept, top)
	}

	return kept
}
