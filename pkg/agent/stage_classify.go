package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bytebuddhi-be/pkg/llm"
)

// classifyHistoryLimit bounds how much conversation context is shown to the
// classifier. Intent rarely depends on anything older.
const classifyHistoryLimit = 4

// ClassifyStage resolves the user's intent with a pure LLM call.
// It never fails the request: an unavailable provider or an unparseable
// answer defaults to general_chat (availability over precision).
type ClassifyStage struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewClassifyStage(llmProvider llm.LLMProvider, logger *log.Logger) *ClassifyStage {
	return &ClassifyStage{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (s *ClassifyStage) Name() string { return StageClassify }

func (s *ClassifyStage) Run(ctx context.Context, st *RequestState, _ EmitFunc) StageResult {
	prompt := s.buildPrompt(st.Query, st.History)

	// Temperature 0 for deterministic labels
	response, err := s.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		s.logger.Printf("[CLASSIFY] Provider error, defaulting to general_chat: %v", err)
		return StageResult{Intent: IntentGeneralChat}
	}

	intent, ok := parseIntent(response)
	if !ok {
		s.logger.Printf("[CLASSIFY] Unparseable label %q, defaulting to general_chat", truncate(response, 60))
		return StageResult{Intent: IntentGeneralChat}
	}

	s.logger.Printf("[CLASSIFY] Intent: %s", intent)
	return StageResult{Intent: intent}
}

func (s *ClassifyStage) buildPrompt(query string, history []llm.Message) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an intent classifier for a coding assistant. Your ONLY job is to label the request.\n")
	prompt.WriteString("You do NOT answer questions. You only classify.\n")
	prompt.WriteString("</system>\n\n")

	if len(history) > 0 {
		recent := history
		if len(recent) > classifyHistoryLimit {
			recent = recent[len(recent)-classifyHistoryLimit:]
		}
		prompt.WriteString("<recent_conversation>\n")
		for _, msg := range recent {
			prompt.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, truncate(msg.Content, 200)))
		}
		prompt.WriteString("</recent_conversation>\n\n")
	}

	prompt.WriteString("<user_query>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_query>\n\n")

	prompt.WriteString("<labels>\n")
	prompt.WriteString("Choose EXACTLY ONE label:\n\n")
	prompt.WriteString("code_generation: User wants new code written\n")
	prompt.WriteString("code_explanation: User wants existing code explained\n")
	prompt.WriteString("code_debug: User needs help finding or fixing a bug\n")
	prompt.WriteString("web_search: User asks about current events, releases, or facts that need the live web\n")
	prompt.WriteString("general_chat: Anything else\n")
	prompt.WriteString("</labels>\n\n")

	prompt.WriteString("Respond with ONLY the label name, nothing else.")

	return prompt.String()
}

// parseIntent normalizes the model answer and matches it against the closed
// label set. Models occasionally wrap the label in punctuation or prose.
func parseIntent(response string) (Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(response))
	normalized = strings.Trim(normalized, "`'\".*: \n")

	for _, intent := range allIntents {
		if normalized == string(intent) {
			return intent, true
		}
	}

	// Tolerate a label embedded in a short sentence, but only if exactly
	// one canonical label appears.
	var found Intent
	matches := 0
	for _, intent := range allIntents {
		if strings.Contains(normalized, string(intent)) {
			found = intent
			matches++
		}
	}
	if matches == 1 {
		return found, true
	}

	return "", false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
