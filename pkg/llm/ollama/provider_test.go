package ollama

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/tutor-x/pkg/llm"
	"github.com/kart-io/tutor-x/pkg/utils/json"
)

func newTestProvider(baseURL string) *Provider {
	return NewProviderWithConfig(&Config{
		BaseURL:    baseURL,
		EmbedModel: "nomic-embed-text",
		ChatModel:  "llama3.2",
		Timeout:    5 * time.Second,
	})
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		_, _ = w.Write([]byte(`{"model":"nomic-embed-text","embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	embeddings, err := p.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2]]}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Embed(context.Background(), []string{"first", "second"})
	require.Error(t, err)
}

func TestEmbedEmptyInput(t *testing.T) {
	p := newTestProvider("http://localhost:1")
	embeddings, err := p.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestChatOptionsForwarded(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	resp, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		&llm.ChatOptions{Temperature: 0.3, MaxTokens: 256})
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 0.3, gotReq.Options["temperature"])
	assert.EqualValues(t, 256, gotReq.Options["num_predict"])
}
