// Package agent implements the query-orchestration workflow: classify the
// request, conditionally gather web evidence or project code context, and
// generate the answer. Stage failures degrade the answer instead of
// aborting the request.
package agent

import (
	"context"
	"log"

	"github.com/google/uuid"

	"bytebuddhi-be/pkg/llm"
	"bytebuddhi-be/pkg/retrieval"
	"bytebuddhi-be/pkg/websearch"
)

// QueryRequest is one user query entering the workflow. ProjectId is
// optional; without it, code intents answer without repository context.
type QueryRequest struct {
	Query     string
	ProjectId *uuid.UUID
	History   []llm.Message
}

// QueryResult is the completed workflow outcome. Failure is non-nil for
// degraded runs; Trace lists the stages that actually ran, in order.
type QueryResult struct {
	ResponseText  string
	Intent        Intent
	Evidence      *websearch.Evidence
	Fragments     []retrieval.Fragment
	GeneratedCode bool
	Failure       *StageFailure
	Trace         []string
}

// Agent is the workflow facade handed to the service layer.
type Agent struct {
	engine *Engine
	logger *log.Logger
}

func NewAgent(engine *Engine, logger *log.Logger) *Agent {
	return &Agent{
		engine: engine,
		logger: logger,
	}
}

// RunQuery executes the workflow to completion and returns the full result.
func (a *Agent) RunQuery(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	st, err := NewRequestState(req.Query, req.ProjectId, req.History)
	if err != nil {
		return nil, err
	}

	if err := a.engine.Execute(ctx, st, nil); err != nil {
		return nil, err
	}
	return resultFromState(st), nil
}

// RunQueryStream starts the workflow in the background and returns a stream
// of response deltas. Input validation still happens synchronously so the
// caller gets ErrEmptyQuery before any goroutine spawns.
func (a *Agent) RunQueryStream(ctx context.Context, req QueryRequest) (*ResponseStream, error) {
	st, err := NewRequestState(req.Query, req.ProjectId, req.History)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	stream := newResponseStream(cancel)

	go func() {
		execErr := a.engine.Execute(runCtx, st, stream.emit(runCtx))
		if execErr != nil {
			a.logger.Printf("[AGENT] Streaming run aborted: %v", execErr)
			stream.finish(nil, execErr)
			return
		}
		stream.finish(resultFromState(st), nil)
	}()

	return stream, nil
}

func resultFromState(st *RequestState) *QueryResult {
	return &QueryResult{
		ResponseText:  st.ResponseText,
		Intent:        st.Intent,
		Evidence:      st.Evidence,
		Fragments:     st.Fragments,
		GeneratedCode: st.GeneratedCode,
		Failure:       st.Failure,
		Trace:         st.Trace,
	}
}
