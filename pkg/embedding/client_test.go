package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-match-go/internal/config"
	"talent-match-go/pkg/invoke"
)

func fastInvoker() *invoke.Client {
	return invoke.NewClient(invoke.Options{
		Gate:  invoke.NoopGate{},
		Sleep: func(context.Context, time.Duration) error { return nil },
	})
}

func writeEmbedding(t *testing.T, w http.ResponseWriter, vec []float32) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"model":  "test-model",
		"data": []map[string]any{
			{"object": "embedding", "index": 0, "embedding": vec},
		},
		"usage": map[string]int{"prompt_tokens": 3, "total_tokens": 3},
	})
	require.NoError(t, err)
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
}

func TestCreateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.EqualValues(t, 4, body["dimensions"])

		writeEmbedding(t, w, []float32{0.1, 0.2, 0.3, 0.4})
	}))
	defer server.Close()

	client := NewClient(config.EmbeddingConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Dimensions: 4,
	}, fastInvoker())

	vec, err := client.CreateEmbedding(context.Background(), "senior go engineer")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vec)
}

func TestCreateEmbedding_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeRateLimited(w)
			return
		}
		writeEmbedding(t, w, []float32{1, 0})
	}))
	defer server.Close()

	client := NewClient(config.EmbeddingConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, fastInvoker())

	vec, err := client.CreateEmbedding(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCreateEmbedding_ServerErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad input","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewClient(config.EmbeddingConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, fastInvoker())

	_, err := client.CreateEmbedding(context.Background(), "text")
	var failed *invoke.InvocationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, OperationEmbed, failed.Operation)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCreateEmbedding_EmptyDataIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[],"model":"m"}`))
	}))
	defer server.Close()

	client := NewClient(config.EmbeddingConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, fastInvoker())

	_, err := client.CreateEmbedding(context.Background(), "text")
	var malformed *invoke.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}
