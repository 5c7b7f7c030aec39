package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/web/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "career stories sales", r.URL.Query().Get("q"))
		assert.Equal(t, "8", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{
			Web: WebResults{Results: []Result{
				{Title: "How I broke into sales", URL: "https://example.com/sales", Description: "A story"},
				{Title: "Entry level roles", URL: "https://example.com/jobs", Description: "Listings"},
			}},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	resp, err := client.Search(context.Background(), "career stories sales")

	require.NoError(t, err)
	require.Len(t, resp.Web.Results, 2)
	assert.Equal(t, "How I broke into sales", resp.Web.Results[0].Title)
	assert.Equal(t, "https://example.com/jobs", resp.Web.Results[1].URL)
}

func TestSearch_CustomLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithLimit(3), WithRateLimit(1000, 10))
	_, err := client.Search(context.Background(), "anything")
	require.NoError(t, err)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	resp, err := client.Search(context.Background(), "query")

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "401")
}

func TestSearch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"web": not json`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	resp, err := client.Search(context.Background(), "query")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient("test-key", WithRateLimit(1000, 10))
	resp, err := client.Search(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000, 10))
	_, err := client.Search(ctx, "query")
	assert.Error(t, err)
}

func TestNewClient_MissingKeyPanics(t *testing.T) {
	assert.Panics(t, func() { NewClient("") })
}
