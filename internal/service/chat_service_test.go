package service

import (
	"strings"
	"testing"

	"bytebuddhi-be/pkg/agent"
	"bytebuddhi-be/pkg/websearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"short query kept", "Explain this function", "Explain this function"},
		{"newlines flattened", "fix\nthis\nbug", "fix this bug"},
		{"empty falls back", "   ", "New conversation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveTitle(tt.query))
		})
	}
}

func TestDeriveTitleTruncatesLongQueries(t *testing.T) {
	long := strings.Repeat("refactor ", 20)
	title := deriveTitle(long)

	assert.LessOrEqual(t, len([]rune(title)), 80)
	assert.True(t, strings.HasSuffix(title, "..."))
}

func TestMetadataFromResultCarriesSourcesAndFailure(t *testing.T) {
	result := &agent.QueryResult{
		ResponseText: "answer",
		Intent:       agent.IntentWebSearch,
		Trace:        []string{"classify", "search", "respond"},
		Evidence: &websearch.Evidence{
			Answer: "quick answer",
			Sources: []websearch.Source{
				{Title: "Go docs", URL: "https://go.dev/doc"},
			},
		},
		Failure: &agent.StageFailure{Stage: "search", Kind: "timeout", Message: "deadline exceeded"},
	}

	metadata := metadataFromResult(result)

	assert.Equal(t, "web_search", metadata.Intent)
	assert.Equal(t, []string{"classify", "search", "respond"}, metadata.Trace)
	require.Len(t, metadata.Sources, 1)
	assert.Equal(t, "Go docs", metadata.Sources[0].Title)
	assert.True(t, metadata.Degraded)
	assert.Equal(t, "search", metadata.FailedStage)
}

func TestMetadataFromResultCleanRun(t *testing.T) {
	result := &agent.QueryResult{
		ResponseText:  "```go\nfunc main() {}\n```",
		Intent:        agent.IntentCodeGeneration,
		Trace:         []string{"classify", "respond"},
		GeneratedCode: true,
	}

	metadata := metadataFromResult(result)

	assert.False(t, metadata.Degraded)
	assert.Empty(t, metadata.FailedStage)
	assert.True(t, metadata.GeneratedCode)
	assert.Empty(t, metadata.Sources)
}

func TestMetadataToDTORoundTrip(t *testing.T) {
	assert.Nil(t, metadataToDTO(nil))

	result := &agent.QueryResult{
		Intent: agent.IntentGeneralChat,
		Trace:  []string{"classify", "respond"},
	}
	out := metadataToDTO(metadataFromResult(result))
	require.NotNil(t, out)
	assert.Equal(t, "general_chat", out.Intent)
	assert.Equal(t, []string{"classify", "respond"}, out.Trace)
}
