package agent

import (
	"context"
	"errors"
	"testing"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Intent
		wantOk   bool
	}{
		{"exact label", "web_search", IntentWebSearch, true},
		{"upper case", "CODE_DEBUG", IntentCodeDebug, true},
		{"wrapped in backticks", "`code_generation`", IntentCodeGeneration, true},
		{"trailing period", "general_chat.", IntentGeneralChat, true},
		{"label in short sentence", "the label is code_explanation", IntentCodeExplanation, true},
		{"surrounding whitespace", "  web_search\n", IntentWebSearch, true},
		{"empty response", "", "", false},
		{"unknown label", "poetry_review", "", false},
		{"two labels is ambiguous", "code_debug or code_generation", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseIntent(tt.response)
			if ok != tt.wantOk {
				t.Fatalf("parseIntent(%q) ok = %v, want %v", tt.response, ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("parseIntent(%q) = %q, want %q", tt.response, got, tt.want)
			}
		})
	}
}

func TestClassifyStageNeverFails(t *testing.T) {
	tests := []struct {
		name       string
		provider   *stubLLM
		wantIntent Intent
	}{
		{
			name:       "clean label",
			provider:   &stubLLM{generateResp: "code_debug"},
			wantIntent: IntentCodeDebug,
		},
		{
			name:       "provider down defaults to chat",
			provider:   &stubLLM{generateErr: errors.New("connection refused")},
			wantIntent: IntentGeneralChat,
		},
		{
			name:       "gibberish defaults to chat",
			provider:   &stubLLM{generateResp: "I think this is about cooking"},
			wantIntent: IntentGeneralChat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := NewClassifyStage(tt.provider, testLogger())
			st := &RequestState{Query: "help me"}

			result := stage.Run(context.Background(), st, nil)
			if result.Failure != nil {
				t.Fatalf("classify must never fail, got %+v", result.Failure)
			}
			if result.Intent != tt.wantIntent {
				t.Errorf("Intent = %q, want %q", result.Intent, tt.wantIntent)
			}
		})
	}
}

func TestClassifyStageDeterministicForSameInput(t *testing.T) {
	provider := &stubLLM{generateResp: "web_search"}
	stage := NewClassifyStage(provider, testLogger())
	st := &RequestState{Query: "latest release of Go?"}

	first := stage.Run(context.Background(), st, nil)
	second := stage.Run(context.Background(), st, nil)

	if first.Intent != second.Intent {
		t.Errorf("same input classified differently: %q vs %q", first.Intent, second.Intent)
	}
}
