package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchNormalizesResponse(t *testing.T) {
	var gotReq tavilySearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(tavilySearchResponse{
			Query:  gotReq.Query,
			Answer: "Go 1.24 was released in February 2025.",
			Results: []tavilyResult{
				{Title: "Go release notes", URL: "https://go.dev/doc/go1.24", Content: "Release notes", Score: 0.97},
				{Title: "Go blog", URL: "https://go.dev/blog", Content: "Announcement", Score: 0.81},
			},
		})
	}))
	defer srv.Close()

	client := NewTavilyClient("test-key")
	client.BaseURL = srv.URL

	evidence, err := client.Search(context.Background(), "go 1.24 release", 5, true)
	require.NoError(t, err)

	assert.Equal(t, "go 1.24 release", gotReq.Query)
	assert.Equal(t, 5, gotReq.MaxResults)
	assert.True(t, gotReq.IncludeAnswer)

	assert.Equal(t, "Go 1.24 was released in February 2025.", evidence.Answer)
	require.Len(t, evidence.Sources, 2)
	assert.Equal(t, "Go release notes", evidence.Sources[0].Title)
	assert.Equal(t, "https://go.dev/doc/go1.24", evidence.Sources[0].URL)
	assert.InDelta(t, 0.97, evidence.Sources[0].Score, 0.001)
}

func TestSearchRejectsMissingApiKey(t *testing.T) {
	client := NewTavilyClient("")

	_, err := client.Search(context.Background(), "anything", 3, false)
	assert.Error(t, err)
}

func TestSearchSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer srv.Close()

	client := NewTavilyClient("bad-key")
	client.BaseURL = srv.URL

	_, err := client.Search(context.Background(), "anything", 3, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSearchDefaultsMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilySearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, 5, req.MaxResults)
		json.NewEncoder(w).Encode(tavilySearchResponse{})
	}))
	defer srv.Close()

	client := NewTavilyClient("test-key")
	client.BaseURL = srv.URL

	evidence, err := client.Search(context.Background(), "query", 0, false)
	require.NoError(t, err)
	assert.Empty(t, evidence.Sources)
}
