package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/infrastructure/config"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(config.AIConfig{
		OpenAIKey:      "sk-test",
		OpenAIModel:    "gpt-4o-mini",
		EmbeddingModel: "text-embedding-ada-002",
		TimeoutSeconds: 5,
	}, zaptest.NewLogger(t))
	c.baseURL = baseURL
	return c
}

func TestForwardStreamConcatenatesDeltas(t *testing.T) {
	sse := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"<answer>"}}]}`,
		`data: {"choices":[{"delta":{"content":"<text>Hi"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"</text></answer>"}}]}`,
		`data: [DONE]`,
	}, "\n")

	var buf bytes.Buffer
	err := forwardStream(strings.NewReader(sse), &buf)
	require.NoError(t, err)
	assert.Equal(t, "<answer><text>Hi</text></answer>", buf.String())
}

func TestForwardStreamSkipsMalformedChunks(t *testing.T) {
	sse := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"a"}}]}`,
		`data: {not json`,
		`: keep-alive comment`,
		`data: {"choices":[]}`,
		`data: {"choices":[{"delta":{"content":"b"}}]}`,
		`data: [DONE]`,
		`data: {"choices":[{"delta":{"content":"after done is ignored"}}]}`,
	}, "\n")

	var buf bytes.Buffer
	err := forwardStream(strings.NewReader(sse), &buf)
	require.NoError(t, err)
	assert.Equal(t, "ab", buf.String())
}

func TestForwardStreamEOFWithoutSentinel(t *testing.T) {
	sse := `data: {"choices":[{"delta":{"content":"partial"}}]}` + "\n"

	var buf bytes.Buffer
	err := forwardStream(strings.NewReader(sse), &buf)
	require.NoError(t, err)
	assert.Equal(t, "partial", buf.String())
}

func TestStreamChatCompletionSendsHistoryInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[2].Role)
		assert.Equal(t, "more like that", req.Messages[2].Content)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"ok"}}]}` + "\n\ndata: [DONE]\n"))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)

	var buf bytes.Buffer
	err := client.StreamChatCompletion(context.Background(), "be helpful",
		[]chat.Message{{Role: chat.RoleUser, Content: "pasta ideas"}}, "more like that", &buf)
	require.NoError(t, err)
	assert.Equal(t, "ok", buf.String())
}

func TestGenerateEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.25,-0.5,0.75]}]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)

	vec, err := client.GenerateEmbedding(context.Background(), "chicken dinner")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 0.75}, vec)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)

	_, err := client.Complete(context.Background(), "system", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
