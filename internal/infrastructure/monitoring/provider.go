package monitoring

import (
	"context"
	"io"
	"time"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/ports/outbound"
)

// AIRequestRecorder is the slice of the metrics surface the provider
// decorator needs.
type AIRequestRecorder interface {
	AIRequest(provider, operation, status string, duration time.Duration)
}

// InstrumentProvider wraps an AI provider so every call is counted and timed
// under the given provider name.
func InstrumentProvider(next outbound.AIProvider, name string, metrics AIRequestRecorder) outbound.AIProvider {
	return &instrumentedProvider{next: next, name: name, metrics: metrics}
}

type instrumentedProvider struct {
	next    outbound.AIProvider
	name    string
	metrics AIRequestRecorder
}

func (p *instrumentedProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	embedding, err := p.next.GenerateEmbedding(ctx, text)
	p.metrics.AIRequest(p.name, "embedding", outcome(err), time.Since(start))
	return embedding, err
}

func (p *instrumentedProvider) StreamChatCompletion(ctx context.Context, systemPrompt string, history []chat.Message, prompt string, w io.Writer) error {
	start := time.Now()
	err := p.next.StreamChatCompletion(ctx, systemPrompt, history, prompt, w)
	p.metrics.AIRequest(p.name, "completion_stream", outcome(err), time.Since(start))
	return err
}

func (p *instrumentedProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	result, err := p.next.Complete(ctx, systemPrompt, userPrompt)
	p.metrics.AIRequest(p.name, "completion", outcome(err), time.Since(start))
	return result, err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
