package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	appchat "github.com/handsapp/backend/internal/application/chat"
	"github.com/handsapp/backend/internal/ports/inbound"
)

type stubRecommendService struct {
	fn func(ctx context.Context, req inbound.RecommendRequest, w io.Writer) error
}

func (s *stubRecommendService) Stream(ctx context.Context, req inbound.RecommendRequest, w io.Writer) error {
	return s.fn(ctx, req, w)
}

func newStreamRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/stream", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestStreamRejectsNonPost(t *testing.T) {
	h := NewChatHandlers(&stubRecommendService{}, nil, zaptest.NewLogger(t))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		h.Stream(rec, httptest.NewRequest(method, "/api/v1/chat/stream", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	}
}

func TestStreamRejectsMissingPrompt(t *testing.T) {
	h := NewChatHandlers(&stubRecommendService{}, nil, zaptest.NewLogger(t))

	for _, body := range []string{`{}`, `{"prompt":""}`, `{"prompt":"   "}`, `not json`} {
		rec := httptest.NewRecorder()
		h.Stream(rec, newStreamRequest(t, body))

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), body)
		assert.NotEmpty(t, resp["error"], body)
	}
}

func TestStreamSuccessHeadersAndBody(t *testing.T) {
	svc := &stubRecommendService{fn: func(ctx context.Context, req inbound.RecommendRequest, w io.Writer) error {
		assert.Equal(t, "chicken dinner", req.Prompt)
		io.WriteString(w, "<answer><text>Try the garlic chicken.</text>")
		io.WriteString(w, "<items></items></answer>")
		return nil
	}}
	h := NewChatHandlers(svc, nil, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Stream(rec, newStreamRequest(t, `{"prompt":"chicken dinner"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-transform", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "<answer><text>Try the garlic chicken.</text><items></items></answer>", rec.Body.String())
}

func TestStreamForwardsHistory(t *testing.T) {
	var got inbound.RecommendRequest
	svc := &stubRecommendService{fn: func(ctx context.Context, req inbound.RecommendRequest, w io.Writer) error {
		got = req
		return nil
	}}
	h := NewChatHandlers(svc, nil, zaptest.NewLogger(t))

	body := `{"prompt":"something with rice","conversationHistory":[{"role":"user","content":"dinner ideas"},{"role":"assistant","content":"How about pasta?"}]}`
	rec := httptest.NewRecorder()
	h.Stream(rec, newStreamRequest(t, body))

	require.Len(t, got.History, 2)
	assert.Equal(t, "dinner ideas", got.History[0].Content)
	assert.Equal(t, "How about pasta?", got.History[1].Content)
}

func TestStreamPipelineFailureStillWrites200(t *testing.T) {
	// The service writes the fallback body itself and returns the error
	// for logging. The handler must not change the status after the fact.
	svc := &stubRecommendService{fn: func(ctx context.Context, req inbound.RecommendRequest, w io.Writer) error {
		io.WriteString(w, appchat.FallbackAnswer)
		return errors.New("embedding provider down")
	}}
	h := NewChatHandlers(svc, nil, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Stream(rec, newStreamRequest(t, `{"prompt":"anything"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, appchat.FallbackAnswer, rec.Body.String())
}

func TestFlushWriterFlushesEachWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	fw := flushWriter{w: rec}

	n, err := fw.Write([]byte("delta"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, rec.Flushed)
}
