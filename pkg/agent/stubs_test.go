package agent

import (
	"context"
	"io"
	"log"

	"github.com/google/uuid"

	"bytebuddhi-be/pkg/llm"
	"bytebuddhi-be/pkg/retrieval"
	"bytebuddhi-be/pkg/websearch"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// stubLLM is a canned llm.LLMProvider for unit tests.
type stubLLM struct {
	generateResp string
	generateErr  error
	chatResp     string
	chatErr      error
	streamDeltas []string
	streamErr    error
	streamMidErr error

	generateCalls int
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.generateCalls++
	return s.generateResp, s.generateErr
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.chatResp, s.chatErr
}

func (s *stubLLM) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	return &sliceStream{deltas: s.streamDeltas, tailErr: s.streamMidErr}, nil
}

func (s *stubLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

// sliceStream replays canned deltas; a non-nil tailErr replaces the final
// io.EOF to model a connection dying mid-stream.
type sliceStream struct {
	deltas  []string
	pos     int
	tailErr error
}

func (s *sliceStream) Recv() (string, error) {
	if s.pos >= len(s.deltas) {
		if s.tailErr != nil {
			return "", s.tailErr
		}
		return "", io.EOF
	}
	delta := s.deltas[s.pos]
	s.pos++
	return delta, nil
}

func (s *sliceStream) Close() error { return nil }

// blockingLLM blocks every call until the context is cancelled. Used to
// exercise cancellation paths.
type blockingLLM struct{}

func (b *blockingLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (b *blockingLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (b *blockingLLM) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type stubSearch struct {
	evidence *websearch.Evidence
	err      error
}

func (s *stubSearch) Search(ctx context.Context, query string, maxResults int, includeAnswer bool) (*websearch.Evidence, error) {
	return s.evidence, s.err
}

type stubRetriever struct {
	fragments []retrieval.Fragment
	err       error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, projectId uuid.UUID, maxFragments int) ([]retrieval.Fragment, error) {
	return s.fragments, s.err
}

// newTestEngine wires real stages over stub providers, mirroring production
// construction.
func newTestEngine(classifier, responder llm.LLMProvider, search websearch.Provider, retriever retrieval.Retriever, opts ...EngineOption) *Engine {
	logger := testLogger()
	stages := []Stage{
		NewClassifyStage(classifier, logger),
		NewSearchStage(search, logger),
		NewRetrieveStage(retriever, logger),
		NewRespondStage(responder, logger),
	}
	return NewEngine(NewRouter(), logger, stages, opts...)
}
