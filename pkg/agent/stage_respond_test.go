package agent

import (
	"context"
	"strings"
	"testing"

	"bytebuddhi-be/pkg/retrieval"
	"bytebuddhi-be/pkg/websearch"
)

func TestContainsFencedCode(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"complete fence", "Here:\n```go\nfmt.Println()\n```", true},
		{"no fence", "Just prose about code.", false},
		{"unclosed fence", "```go\nfmt.Println()", false},
		{"two blocks", "```a```\nand\n```b```", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsFencedCode(tt.response); got != tt.want {
				t.Errorf("containsFencedCode(%q) = %v, want %v", tt.response, got, tt.want)
			}
		})
	}
}

func TestRespondStageSetsGeneratedCode(t *testing.T) {
	provider := &stubLLM{chatResp: "Sure:\n```go\nfunc main() {}\n```"}
	stage := NewRespondStage(provider, testLogger())

	result := stage.Run(context.Background(), &RequestState{Query: "write main", Intent: IntentCodeGeneration}, nil)
	if result.Failure != nil {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if !result.GeneratedCode {
		t.Error("GeneratedCode should be true for a fenced response")
	}
}

func TestRespondPromptShapes(t *testing.T) {
	stage := NewRespondStage(&stubLLM{}, testLogger())

	t.Run("web evidence renders sources", func(t *testing.T) {
		st := &RequestState{
			Query:  "latest Go release?",
			Intent: IntentWebSearch,
			Evidence: &websearch.Evidence{
				Answer:  "Go 1.24",
				Sources: []websearch.Source{{Title: "Go Blog", URL: "https://go.dev/blog", Snippet: "Go 1.24 is out"}},
			},
		}
		messages := stage.buildMessages(st)
		user := messages[len(messages)-1].Content
		if !strings.Contains(user, "<web_search_results>") {
			t.Error("user message should carry the web results block")
		}
		if !strings.Contains(user, "https://go.dev/blog") {
			t.Error("user message should carry the source URL")
		}
	})

	t.Run("fragments render code context", func(t *testing.T) {
		st := &RequestState{
			Query:     "why does Handle panic?",
			Intent:    IntentCodeDebug,
			Fragments: []retrieval.Fragment{{Source: "handler.go", Content: "func Handle() {}"}},
		}
		messages := stage.buildMessages(st)
		user := messages[len(messages)-1].Content
		if !strings.Contains(user, "<code_context>") {
			t.Error("user message should carry the code context block")
		}
		if !strings.Contains(user, "handler.go") {
			t.Error("user message should name the fragment source")
		}
	})

	t.Run("recorded failure adds degradation note", func(t *testing.T) {
		st := &RequestState{
			Query:   "latest Go release?",
			Intent:  IntentWebSearch,
			Failure: &StageFailure{Stage: StageSearch, Kind: FailureTimeout},
		}
		messages := stage.buildMessages(st)
		user := messages[len(messages)-1].Content
		if !strings.Contains(user, "search step failed") {
			t.Error("user message should mention the failed step")
		}
	})

	t.Run("plain chat stays plain", func(t *testing.T) {
		st := &RequestState{Query: "hello", Intent: IntentGeneralChat}
		messages := stage.buildMessages(st)
		user := messages[len(messages)-1].Content
		if strings.Contains(user, "<web_search_results>") || strings.Contains(user, "<code_context>") {
			t.Error("plain chat must not carry evidence blocks")
		}
	})
}
