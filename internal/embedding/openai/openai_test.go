package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcsearch/internal/domain"
)

type embeddingRequest struct {
	Input      string `json:"input"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

func embeddingServer(t *testing.T, dims int, status int) (*httptest.Server, *[]embeddingRequest) {
	t.Helper()
	var requests []embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, body)

		if status != http.StatusOK {
			http.Error(w, "nope", status)
			return
		}
		vec := make([]float32, dims)
		for i := range vec {
			vec[i] = float32(i)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": vec}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(t *testing.T, baseURL string, dims int) *Client {
	t.Helper()
	t.Setenv("TEST_OPENAI_KEY", "test-key")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: "TEST_OPENAI_KEY", Dimensions: dims})
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY", Dimensions: 4})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewClient_InvalidDimensions(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "test-key")
	_, err := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEmbed(t *testing.T) {
	srv, requests := embeddingServer(t, 4, http.StatusOK)
	c := newTestClient(t, srv.URL, 4)

	vec, err := c.Embed(context.Background(), "globally distributed database")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, 4, c.Dimensions())
	require.Len(t, *requests, 1)
	assert.Equal(t, "globally distributed database", (*requests)[0].Input)
	assert.Equal(t, "text-embedding-3-small", (*requests)[0].Model)
}

func TestEmbed_SendsConfiguredDimensions(t *testing.T) {
	srv, requests := embeddingServer(t, 8, http.StatusOK)
	c := newTestClient(t, srv.URL, 8)

	_, err := c.Embed(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, *requests, 1)
	assert.Equal(t, 8, (*requests)[0].Dimensions)
}

func TestEmbed_ServerError(t *testing.T) {
	srv, _ := embeddingServer(t, 4, http.StatusInternalServerError)
	c := newTestClient(t, srv.URL, 4)

	_, err := c.Embed(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestEmbed_DimensionDrift(t *testing.T) {
	srv, _ := embeddingServer(t, 8, http.StatusOK)
	c := newTestClient(t, srv.URL, 4)

	_, err := c.Embed(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestEmbed_NoRetryOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL, 4)

	_, err := c.Embed(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Equal(t, 1, calls)
}
