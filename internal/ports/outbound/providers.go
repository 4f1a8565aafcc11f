// Package outbound defines the interfaces for outbound ports (secondary/driven
// adapters). These are the interfaces the application uses to reach external
// systems: model providers, the vector store, persistence, and caching.
package outbound

import (
	"context"
	"io"
	"time"

	"github.com/handsapp/backend/internal/domain/chat"
)

// EmbeddingService turns text into an embedding vector. The provider is
// opaque: text in, vector out.
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CompletionStreamer streams a chat completion, forwarding each text delta to
// w as it arrives. The concatenation of all deltas is the full answer body;
// no delta is buffered beyond the provider's own line framing.
type CompletionStreamer interface {
	StreamChatCompletion(ctx context.Context, systemPrompt string, history []chat.Message, prompt string, w io.Writer) error
}

// CompletionService is the non-streaming completion surface, used where the
// whole response is needed before any processing (taste profile analysis).
type CompletionService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AIProvider is the full provider surface. Concrete adapters (OpenAI, Gemini,
// mock) implement all three roles.
type AIProvider interface {
	EmbeddingService
	CompletionStreamer
	CompletionService
}

// VectorSearchRepository is the similarity-search RPC over the recipe catalog.
// It returns up to count candidates ranked by similarity to the query
// embedding. The search algorithm itself is opaque to the application.
type VectorSearchRepository interface {
	MatchRecipes(ctx context.Context, queryEmbedding []float32, count int) ([]chat.Candidate, error)
}

// CacheRepository defines the caching operations the application needs.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// MetricsRecorder records application events on the metrics backend.
// Services treat a nil recorder as metrics disabled.
type MetricsRecorder interface {
	EmbeddingCacheHit()
	EmbeddingCacheMiss()
	ConversationCreated()
}

// StorageService stores and serves recipe images.
type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
