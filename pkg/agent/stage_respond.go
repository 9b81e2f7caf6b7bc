package agent

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"bytebuddhi-be/pkg/llm"
)

// RespondStage produces the final answer. The prompt shape depends on the
// accumulated state: web evidence renders as a quick-answer-plus-sources
// block, code fragments as a code-context block, plain chat uses only query
// and history.
type RespondStage struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewRespondStage(llmProvider llm.LLMProvider, logger *log.Logger) *RespondStage {
	return &RespondStage{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (s *RespondStage) Name() string { return StageRespond }

func (s *RespondStage) Run(ctx context.Context, st *RequestState, emit EmitFunc) StageResult {
	messages := s.buildMessages(st)

	var response string
	if emit != nil {
		streamed, err := s.streamResponse(ctx, messages, emit)
		if err != nil {
			s.logger.Printf("[RESPOND] Stream error: %v", err)
			return failed(StageRespond, failureKind(err), err.Error())
		}
		response = streamed
	} else {
		generated, err := s.llmProvider.Chat(ctx, messages)
		if err != nil {
			s.logger.Printf("[RESPOND] Provider error: %v", err)
			return failed(StageRespond, failureKind(err), err.Error())
		}
		response = generated
	}

	s.logger.Printf("[RESPOND] Answer generated (%d chars, intent: %s)", len(response), st.Intent)

	return StageResult{
		ResponseText:  response,
		GeneratedCode: containsFencedCode(response),
	}
}

// streamResponse pulls deltas from the provider, forwards each one in order
// and returns the concatenation.
func (s *RespondStage) streamResponse(ctx context.Context, messages []llm.Message, emit EmitFunc) (string, error) {
	stream, err := s.llmProvider.Stream(ctx, messages)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full strings.Builder
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		emit(delta)
	}

	return full.String(), nil
}

func (s *RespondStage) buildMessages(st *RequestState) []llm.Message {
	messages := make([]llm.Message, 0, len(st.History)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPromptFor(st.Intent)})
	messages = append(messages, st.History...)

	var user strings.Builder
	user.WriteString(st.Query)

	if st.Evidence != nil {
		user.WriteString("\n\n<web_search_results>\n")
		if st.Evidence.Answer != "" {
			user.WriteString("Quick answer: ")
			user.WriteString(st.Evidence.Answer)
			user.WriteString("\n\n")
		}
		user.WriteString("Sources:\n")
		for i, src := range st.Evidence.Sources {
			user.WriteString(fmt.Sprintf("%d. %s (%s)\n   %s\n", i+1, src.Title, src.URL, src.Snippet))
		}
		user.WriteString("</web_search_results>\n")
		user.WriteString("Answer using these results and cite the sources you relied on.")
	}

	if len(st.Fragments) > 0 {
		user.WriteString("\n\n<code_context>\n")
		for _, f := range st.Fragments {
			user.WriteString(fmt.Sprintf("--- %s ---\n```\n%s\n```\n", f.Source, f.Content))
		}
		user.WriteString("</code_context>\n")
		user.WriteString("Ground your answer in the code context above.")
	}

	if st.Failure != nil {
		// Degraded mode: tell the model which evidence is missing so it can
		// answer from general knowledge and say so.
		user.WriteString(fmt.Sprintf(
			"\n\n(Note: the %s step failed, so no supporting material is available. Answer from general knowledge and mention the limitation briefly.)",
			st.Failure.Stage,
		))
	}

	messages = append(messages, llm.Message{Role: "user", Content: user.String()})
	return messages
}

func systemPromptFor(intent Intent) string {
	switch intent {
	case IntentCodeGeneration:
		return "You are an expert programmer. Generate clean, well-documented code based on the user's request."
	case IntentCodeExplanation:
		return "You are an expert programmer. Explain code clearly and concisely."
	case IntentCodeDebug:
		return "You are an expert debugger. Help identify and fix issues in code."
	case IntentWebSearch:
		return "You are a helpful programming assistant with access to fresh web search results."
	default:
		return "You are a helpful programming assistant."
	}
}

// containsFencedCode reports whether the response carries at least one
// complete ``` fenced block.
func containsFencedCode(response string) bool {
	return strings.Count(response, "```") >= 2
}
