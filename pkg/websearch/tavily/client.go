package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bytebuddhi-be/pkg/websearch"
)

const defaultBaseURL = "https://api.tavily.com"

type TavilyClient struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

// Ensure TavilyClient implements Provider
var _ websearch.Provider = &TavilyClient{}

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		ApiKey:  apiKey,
		BaseURL: defaultBaseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type tavilySearchRequest struct {
	ApiKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilySearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// Search calls the Tavily search API and normalizes the response into the
// provider-independent evidence shape.
func (t *TavilyClient) Search(ctx context.Context, query string, maxResults int, includeAnswer bool) (*websearch.Evidence, error) {
	if t.ApiKey == "" {
		return nil, fmt.Errorf("tavily api key not configured")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	reqPayload := tavilySearchRequest{
		ApiKey:        t.ApiKey,
		Query:         query,
		MaxResults:    maxResults,
		SearchDepth:   "basic",
		IncludeAnswer: includeAnswer,
	}
	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := t.BaseURL + "/search"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var tavilyResp tavilySearchResponse
	if err := json.Unmarshal(bodyBytes, &tavilyResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	evidence := &websearch.Evidence{
		Answer:  tavilyResp.Answer,
		Sources: make([]websearch.Source, 0, len(tavilyResp.Results)),
	}
	for _, r := range tavilyResp.Results {
		evidence.Sources = append(evidence.Sources, websearch.Source{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
	}

	return evidence, nil
}
