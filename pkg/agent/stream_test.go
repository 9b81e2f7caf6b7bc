package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func newTestAgent(classifier, responder *stubLLM) *Agent {
	engine := newTestEngine(classifier, responder, &stubSearch{}, &stubRetriever{})
	return NewAgent(engine, testLogger())
}

func TestRunQueryRejectsEmptyQuery(t *testing.T) {
	agent := newTestAgent(&stubLLM{generateResp: "general_chat"}, &stubLLM{chatResp: "hi"})

	_, err := agent.RunQuery(context.Background(), QueryRequest{Query: "   "})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("RunQuery = %v, want ErrEmptyQuery", err)
	}

	_, err = agent.RunQueryStream(context.Background(), QueryRequest{Query: ""})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("RunQueryStream = %v, want ErrEmptyQuery", err)
	}
}

func TestStreamDeltasMatchFinalResponse(t *testing.T) {
	deltas := []string{"Hello", ", ", "world", "!"}
	agent := newTestAgent(
		&stubLLM{generateResp: "general_chat"},
		&stubLLM{streamDeltas: deltas, chatResp: strings.Join(deltas, "")},
	)

	stream, err := agent.RunQueryStream(context.Background(), QueryRequest{Query: "greet me"})
	if err != nil {
		t.Fatalf("RunQueryStream error: %v", err)
	}
	defer stream.Close()

	var received strings.Builder
	for {
		delta, err := stream.Recv(context.Background())
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv error: %v", err)
		}
		received.WriteString(delta)
	}

	result, err := stream.Final(context.Background())
	if err != nil {
		t.Fatalf("Final error: %v", err)
	}
	if received.String() != result.ResponseText {
		t.Errorf("concatenated deltas %q != final response %q", received.String(), result.ResponseText)
	}

	// Non-streaming execution of the same request yields the same text.
	plain, err := agent.RunQuery(context.Background(), QueryRequest{Query: "greet me"})
	if err != nil {
		t.Fatalf("RunQuery error: %v", err)
	}
	if plain.ResponseText != result.ResponseText {
		t.Errorf("streaming response %q != non-streaming response %q", result.ResponseText, plain.ResponseText)
	}
}

func TestStreamCarriesWorkflowOutcome(t *testing.T) {
	agent := newTestAgent(
		&stubLLM{generateResp: "general_chat"},
		&stubLLM{streamDeltas: []string{"done"}},
	)

	stream, err := agent.RunQueryStream(context.Background(), QueryRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("RunQueryStream error: %v", err)
	}
	defer stream.Close()

	for {
		if _, err := stream.Recv(context.Background()); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Recv error: %v", err)
		}
	}

	result, err := stream.Final(context.Background())
	if err != nil {
		t.Fatalf("Final error: %v", err)
	}
	if result.Intent != IntentGeneralChat {
		t.Errorf("Intent = %q, want %q", result.Intent, IntentGeneralChat)
	}
	if len(result.Trace) == 0 {
		t.Error("Trace must not be empty")
	}
}

func TestStreamCloseCancelsRun(t *testing.T) {
	engine := newTestEngine(&blockingLLM{}, &blockingLLM{}, &stubSearch{}, &stubRetriever{})
	agent := NewAgent(engine, testLogger())

	stream, err := agent.RunQueryStream(context.Background(), QueryRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("RunQueryStream error: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = stream.Final(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Final after Close = %v, want context.Canceled", err)
	}
}

func TestStreamRecvHonoursCallerContext(t *testing.T) {
	engine := newTestEngine(&blockingLLM{}, &blockingLLM{}, &stubSearch{}, &stubRetriever{})
	agent := NewAgent(engine, testLogger())

	stream, err := agent.RunQueryStream(context.Background(), QueryRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("RunQueryStream error: %v", err)
	}
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = stream.Recv(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Recv = %v, want context.DeadlineExceeded", err)
	}
}

func TestStreamDegradedRunEmitsCannedAnswer(t *testing.T) {
	agent := newTestAgent(
		&stubLLM{generateResp: "general_chat"},
		&stubLLM{streamErr: errors.New("model overloaded")},
	)

	stream, err := agent.RunQueryStream(context.Background(), QueryRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("RunQueryStream error: %v", err)
	}
	defer stream.Close()

	var received strings.Builder
	for {
		delta, err := stream.Recv(context.Background())
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv error: %v", err)
		}
		received.WriteString(delta)
	}

	result, err := stream.Final(context.Background())
	if err != nil {
		t.Fatalf("Final error: %v", err)
	}
	if result.ResponseText != degradedResponse {
		t.Errorf("ResponseText = %q, want the canned degraded answer", result.ResponseText)
	}
	if received.String() != result.ResponseText {
		t.Errorf("concatenated deltas %q != final response %q", received.String(), result.ResponseText)
	}
}
