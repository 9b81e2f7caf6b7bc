package agent

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRouterDecisionTable(t *testing.T) {
	scope := uuid.New()

	tests := []struct {
		name      string
		current   string
		intent    Intent
		projectId *uuid.UUID
		wantNext  string
	}{
		{
			name:     "entry always classifies",
			current:  StageEntry,
			wantNext: StageClassify,
		},
		{
			name:     "web search intent searches",
			current:  StageClassify,
			intent:   IntentWebSearch,
			wantNext: StageSearch,
		},
		{
			name:      "explanation with scope retrieves",
			current:   StageClassify,
			intent:    IntentCodeExplanation,
			projectId: &scope,
			wantNext:  StageRetrieve,
		},
		{
			name:      "debug with scope retrieves",
			current:   StageClassify,
			intent:    IntentCodeDebug,
			projectId: &scope,
			wantNext:  StageRetrieve,
		},
		{
			name:     "debug without scope responds directly",
			current:  StageClassify,
			intent:   IntentCodeDebug,
			wantNext: StageRespond,
		},
		{
			name:      "generation never retrieves",
			current:   StageClassify,
			intent:    IntentCodeGeneration,
			projectId: &scope,
			wantNext:  StageRespond,
		},
		{
			name:     "general chat responds directly",
			current:  StageClassify,
			intent:   IntentGeneralChat,
			wantNext: StageRespond,
		},
		{
			name:     "search feeds respond",
			current:  StageSearch,
			intent:   IntentWebSearch,
			wantNext: StageRespond,
		},
		{
			name:      "retrieve feeds respond",
			current:   StageRetrieve,
			intent:    IntentCodeDebug,
			projectId: &scope,
			wantNext:  StageRespond,
		},
		{
			name:     "respond terminates",
			current:  StageRespond,
			intent:   IntentGeneralChat,
			wantNext: StageTerminal,
		},
	}

	router := NewRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &RequestState{Query: "q", Intent: tt.intent, ProjectId: tt.projectId}

			next, err := router.Next(tt.current, st)
			if err != nil {
				t.Fatalf("Next(%q) error: %v", tt.current, err)
			}
			if next != tt.wantNext {
				t.Errorf("Next(%q) = %q, want %q", tt.current, next, tt.wantNext)
			}
		})
	}
}

func TestRouterUnknownStage(t *testing.T) {
	router := NewRouter()

	_, err := router.Next("no_such_stage", &RequestState{Query: "q"})
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("Next on unknown stage = %v, want ErrNoRoute", err)
	}
}

func TestRouterEmptyRoute(t *testing.T) {
	router := NewRouterFromTable(map[string]RouteFunc{
		StageEntry: func(st *RequestState) string { return "" },
	})

	_, err := router.Next(StageEntry, &RequestState{Query: "q"})
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("Next with empty route = %v, want ErrNoRoute", err)
	}
}
