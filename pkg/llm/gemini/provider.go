package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"

	"bytebuddhi-be/pkg/llm"
)

type GeminiProvider struct {
	client    *genai.Client
	ModelName string
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		ModelName: modelName,
	}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	model, contents, config := p.prepare(history, opts...)

	result, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	return result.Text(), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (p *GeminiProvider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	model, contents, config := p.prepare(history, opts...)

	it := p.client.Models.GenerateContentStream(ctx, model, contents, config)
	next, stop := iter.Pull2(it)

	return &geminiStream{next: next, stop: stop}, nil
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := p.client.Models.EmbedContent(ctx,
		"gemini-embedding-001",
		contents,
		&genai.EmbedContentConfig{
			TaskType: "RETRIEVAL_QUERY",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return result.Embeddings[0].Values, nil
}

// prepare maps generic messages to genai contents. System messages become the
// system instruction, "assistant" maps to the model role.
func (p *GeminiProvider) prepare(history []llm.Message, opts ...llm.Option) (string, []*genai.Content, *genai.GenerateContentConfig) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	config := &genai.GenerateContentConfig{}
	var contents []*genai.Content

	for _, msg := range history {
		switch msg.Role {
		case "system":
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: msg.Content}},
			}
		case "assistant", "model":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if options.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(options.Temperature))
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	return model, contents, config
}

// geminiStream adapts the genai iterator to the pull-based llm.Stream.
type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	done bool
}

func (s *geminiStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	chunk, err, ok := s.next()
	if !ok {
		s.done = true
		return "", io.EOF
	}
	if err != nil {
		s.done = true
		return "", fmt.Errorf("gemini stream failed: %w", err)
	}

	return chunk.Text(), nil
}

func (s *geminiStream) Close() error {
	if !s.done {
		s.done = true
		s.stop()
	}
	return nil
}
