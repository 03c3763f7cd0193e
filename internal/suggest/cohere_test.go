package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestTitle(t *testing.T) {
	var gotAuth string
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(generateResponse{
			Generations: []struct {
				Text string `json:"text"`
			}{{Text: "  How do I memoize a component?\n"}},
		})
	}))
	defer server.Close()

	client := NewClient("test-key")
	client.baseURL = server.URL

	title, err := client.SuggestTitle(context.Background(), "my component re-renders")
	require.NoError(t, err)
	assert.Equal(t, "How do I memoize a component?", title)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "command", gotReq.Model)
	assert.Equal(t, 60, gotReq.MaxTokens)
}

func TestSuggestTitleFailures(t *testing.T) {
	t.Run("api error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient("test-key")
		client.baseURL = server.URL
		_, err := client.SuggestTitle(context.Background(), "prompt")
		assert.Error(t, err)
	})

	t.Run("no generations", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"generations":[]}`))
		}))
		defer server.Close()

		client := NewClient("test-key")
		client.baseURL = server.URL
		_, err := client.SuggestTitle(context.Background(), "prompt")
		assert.Error(t, err)
	})
}
