package agent

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"bytebuddhi-be/pkg/retrieval"
	"bytebuddhi-be/pkg/websearch"
)

func TestEngineWebSearchPath(t *testing.T) {
	classifier := &stubLLM{generateResp: "web_search"}
	responder := &stubLLM{chatResp: "Go 1.24 is the latest release."}
	search := &stubSearch{evidence: &websearch.Evidence{
		Answer:  "Go 1.24",
		Sources: []websearch.Source{{Title: "Go Blog", URL: "https://go.dev/blog"}},
	}}

	engine := newTestEngine(classifier, responder, search, &stubRetriever{})
	st := &RequestState{Query: "what is the latest Go release?"}

	if err := engine.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	wantTrace := []string{StageClassify, StageSearch, StageRespond}
	if !reflect.DeepEqual(st.Trace, wantTrace) {
		t.Errorf("Trace = %v, want %v", st.Trace, wantTrace)
	}
	if st.Evidence == nil {
		t.Error("Evidence should be populated on the search path")
	}
	if len(st.Fragments) != 0 {
		t.Error("Fragments must stay empty on the search path")
	}
	if st.ResponseText == "" {
		t.Error("ResponseText must not be empty")
	}
	if st.Failure != nil {
		t.Errorf("unexpected failure: %+v", st.Failure)
	}
}

func TestEngineRetrievePath(t *testing.T) {
	projectId := uuid.New()
	classifier := &stubLLM{generateResp: "code_debug"}
	responder := &stubLLM{chatResp: "The nil check on line 3 is inverted."}
	retriever := &stubRetriever{fragments: []retrieval.Fragment{
		{Source: "handler.go", Content: "func Handle() {}", Score: 0.91},
	}}

	engine := newTestEngine(classifier, responder, &stubSearch{}, retriever)
	st := &RequestState{Query: "why does this panic?", ProjectId: &projectId}

	if err := engine.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	wantTrace := []string{StageClassify, StageRetrieve, StageRespond}
	if !reflect.DeepEqual(st.Trace, wantTrace) {
		t.Errorf("Trace = %v, want %v", st.Trace, wantTrace)
	}
	if len(st.Fragments) != 1 {
		t.Fatalf("Fragments = %d, want 1", len(st.Fragments))
	}
	if st.Evidence != nil {
		t.Error("Evidence must stay empty on the retrieve path")
	}
}

func TestEngineDirectRespondPath(t *testing.T) {
	classifier := &stubLLM{generateResp: "general_chat"}
	responder := &stubLLM{chatResp: "Hello! How can I help?"}

	engine := newTestEngine(classifier, responder, &stubSearch{}, &stubRetriever{})
	st := &RequestState{Query: "hi there"}

	if err := engine.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	wantTrace := []string{StageClassify, StageRespond}
	if !reflect.DeepEqual(st.Trace, wantTrace) {
		t.Errorf("Trace = %v, want %v", st.Trace, wantTrace)
	}
}

func TestEngineSearchFailureDegrades(t *testing.T) {
	classifier := &stubLLM{generateResp: "web_search"}
	responder := &stubLLM{chatResp: "From what I know, Go releases twice a year."}
	search := &stubSearch{err: context.DeadlineExceeded}

	engine := newTestEngine(classifier, responder, search, &stubRetriever{})
	st := &RequestState{Query: "latest Go release?"}

	if err := engine.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("degraded run must not return an error, got: %v", err)
	}

	if st.Failure == nil {
		t.Fatal("Failure must be recorded")
	}
	if st.Failure.Stage != StageSearch {
		t.Errorf("Failure.Stage = %q, want %q", st.Failure.Stage, StageSearch)
	}
	if st.Failure.Kind != FailureTimeout {
		t.Errorf("Failure.Kind = %q, want %q", st.Failure.Kind, FailureTimeout)
	}
	if st.ResponseText == "" {
		t.Error("a degraded run must still produce a response")
	}

	wantTrace := []string{StageClassify, StageSearch, StageRespond}
	if !reflect.DeepEqual(st.Trace, wantTrace) {
		t.Errorf("Trace = %v, want %v", st.Trace, wantTrace)
	}
}

func TestEngineRespondFailureUsesCannedAnswer(t *testing.T) {
	classifier := &stubLLM{generateResp: "general_chat"}
	responder := &stubLLM{chatErr: errors.New("model overloaded")}

	engine := newTestEngine(classifier, responder, &stubSearch{}, &stubRetriever{})
	st := &RequestState{Query: "hi"}

	if err := engine.Execute(context.Background(), st, nil); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if st.ResponseText != degradedResponse {
		t.Errorf("ResponseText = %q, want the canned degraded answer", st.ResponseText)
	}
	if st.Failure == nil || st.Failure.Stage != StageRespond {
		t.Errorf("Failure = %+v, want a respond-stage failure", st.Failure)
	}
}

func TestEngineMidStreamFailureAdoptsPartialText(t *testing.T) {
	classifier := &stubLLM{generateResp: "general_chat"}
	responder := &stubLLM{
		streamDeltas: []string{"The answer ", "is 42"},
		streamMidErr: errors.New("connection reset"),
	}

	engine := newTestEngine(classifier, responder, &stubSearch{}, &stubRetriever{})
	st := &RequestState{Query: "hi"}

	var got strings.Builder
	err := engine.Execute(context.Background(), st, func(delta string) { got.WriteString(delta) })
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if st.ResponseText != "The answer is 42" {
		t.Errorf("ResponseText = %q, want the partial streamed text", st.ResponseText)
	}
	if got.String() != st.ResponseText {
		t.Errorf("stream = %q, final text = %q, must be equal", got.String(), st.ResponseText)
	}
	if st.Failure == nil || st.Failure.Stage != StageRespond {
		t.Errorf("Failure = %+v, want a respond-stage failure", st.Failure)
	}
}

func TestEngineStreamFailureBeforeFirstDelta(t *testing.T) {
	classifier := &stubLLM{generateResp: "general_chat"}
	responder := &stubLLM{streamErr: errors.New("model overloaded")}

	engine := newTestEngine(classifier, responder, &stubSearch{}, &stubRetriever{})
	st := &RequestState{Query: "hi"}

	var got strings.Builder
	err := engine.Execute(context.Background(), st, func(delta string) { got.WriteString(delta) })
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if st.ResponseText != degradedResponse {
		t.Errorf("ResponseText = %q, want the canned degraded answer", st.ResponseText)
	}
	if got.String() != degradedResponse {
		t.Errorf("stream = %q, want exactly one canned delta", got.String())
	}
}

func TestEngineCycleGuard(t *testing.T) {
	logger := testLogger()
	classify := NewClassifyStage(&stubLLM{generateResp: "general_chat"}, logger)

	// Misconfigured table: classify routes back to itself forever.
	router := NewRouterFromTable(map[string]RouteFunc{
		StageEntry:    func(st *RequestState) string { return StageClassify },
		StageClassify: func(st *RequestState) string { return StageClassify },
	})
	engine := NewEngine(router, logger, []Stage{classify}, WithMaxSteps(5))

	st := &RequestState{Query: "hi"}
	err := engine.Execute(context.Background(), st, nil)
	if !errors.Is(err, ErrWorkflowCycleExceeded) {
		t.Fatalf("Execute = %v, want ErrWorkflowCycleExceeded", err)
	}
	if len(st.Trace) != 5 {
		t.Errorf("Trace length = %d, want exactly the step bound 5", len(st.Trace))
	}
}

func TestEngineUnregisteredStage(t *testing.T) {
	logger := testLogger()
	router := NewRouter()

	// Router resolves classify but no stage carries that name.
	engine := NewEngine(router, logger, nil)

	err := engine.Execute(context.Background(), &RequestState{Query: "hi"}, nil)
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("Execute = %v, want ErrNoRoute", err)
	}
}

func TestEngineCancelledContext(t *testing.T) {
	engine := newTestEngine(&blockingLLM{}, &blockingLLM{}, &stubSearch{}, &stubRetriever{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Execute(ctx, &RequestState{Query: "hi"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute = %v, want context.Canceled", err)
	}
}
