package agent

import (
	"strings"

	"github.com/google/uuid"

	"bytebuddhi-be/pkg/llm"
	"bytebuddhi-be/pkg/retrieval"
	"bytebuddhi-be/pkg/websearch"
)

// Intent is the resolved classification of a user query. It drives routing.
type Intent string

const (
	IntentCodeGeneration  Intent = "code_generation"
	IntentCodeExplanation Intent = "code_explanation"
	IntentCodeDebug       Intent = "code_debug"
	IntentWebSearch       Intent = "web_search"
	IntentGeneralChat     Intent = "general_chat"
)

// allIntents is the closed set of canonical labels the classifier may produce.
var allIntents = []Intent{
	IntentCodeGeneration,
	IntentCodeExplanation,
	IntentCodeDebug,
	IntentWebSearch,
	IntentGeneralChat,
}

// Stage name constants. StageEntry and StageTerminal are routing markers,
// never invoked and never recorded in the trace.
const (
	StageEntry    = "entry"
	StageClassify = "classify"
	StageSearch   = "search"
	StageRetrieve = "retrieve"
	StageRespond  = "respond"
	StageTerminal = "terminal"
)

// Failure kinds recorded in StageFailure.Kind
const (
	FailureProviderUnavailable = "provider_unavailable"
	FailureTimeout             = "timeout"
)

// StageFailure marks a recovered stage-level failure. The engine records it
// in the state and degrades instead of aborting.
type StageFailure struct {
	Stage   string
	Kind    string
	Message string
}

// RequestState is the mutable record threaded through one workflow execution.
// It is exclusively owned by one in-flight request and mutated only by the
// engine merging stage results; stages receive it read-only.
type RequestState struct {
	Query     string
	ProjectId *uuid.UUID
	History   []llm.Message

	Intent    Intent
	Fragments []retrieval.Fragment
	Evidence  *websearch.Evidence

	ResponseText  string
	GeneratedCode bool

	Failure *StageFailure
	Trace   []string
}

// NewRequestState validates the inputs and builds the initial state.
// An empty query is a caller-input error and never enters the workflow.
func NewRequestState(query string, projectId *uuid.UUID, history []llm.Message) (*RequestState, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	return &RequestState{
		Query:     query,
		ProjectId: projectId,
		History:   history,
	}, nil
}

// StageResult is the partial update returned by one stage invocation.
// It is a tagged variant: either Failure is set and every update field is
// ignored, or Failure is nil and the zero-valued fields are skipped on merge.
type StageResult struct {
	Intent        Intent
	Evidence      *websearch.Evidence
	Fragments     []retrieval.Fragment
	ResponseText  string
	GeneratedCode bool

	Failure *StageFailure
}

func failed(stage, kind, message string) StageResult {
	return StageResult{
		Failure: &StageFailure{Stage: stage, Kind: kind, Message: message},
	}
}

// merge applies a success result onto the state. Only fields the stage
// actually produced are written, so stages cannot clobber each other.
func (st *RequestState) merge(res StageResult) {
	if res.Intent != "" {
		st.Intent = res.Intent
	}
	if res.Evidence != nil {
		st.Evidence = res.Evidence
	}
	if len(res.Fragments) > 0 {
		st.Fragments = res.Fragments
	}
	if res.ResponseText != "" {
		st.ResponseText = res.ResponseText
		st.GeneratedCode = res.GeneratedCode
	}
}
