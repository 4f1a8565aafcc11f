package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/ports/inbound"
	"github.com/handsapp/backend/internal/ports/outbound"
	"go.uber.org/zap"
)

// Retrieval depth per context regime. Vague requests (meal type without an
// ingredient) retrieve more candidates to favor recall and variety.
const (
	DefaultMatchCount = 8
	VagueMatchCount   = 12
)

// FallbackAnswer is written to an already-open response stream when the
// pipeline fails mid-flight. The client has no other way to recover from a
// truncated body, so the success path always ends with parseable XML.
const FallbackAnswer = `<answer><text>Sorry, I encountered an error. Please try again.</text><items></items></answer>`

// RecommendService orchestrates the retrieval-augmented recommendation
// pipeline: extract context, build the embedding query, retrieve candidates,
// assemble the grounding prompt, and stream the completion.
type RecommendService struct {
	provider outbound.AIProvider
	vectors  outbound.VectorSearchRepository
	cache    outbound.CacheRepository
	cacheTTL time.Duration
	metrics  outbound.MetricsRecorder
	logger   *zap.Logger
}

// NewRecommendService creates a recommendation service. cache may be nil, in
// which case every embedding is requested from the provider. metrics may be
// nil to disable cache instrumentation.
func NewRecommendService(
	provider outbound.AIProvider,
	vectors outbound.VectorSearchRepository,
	cache outbound.CacheRepository,
	cacheTTL time.Duration,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
) *RecommendService {
	return &RecommendService{
		provider: provider,
		vectors:  vectors,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		logger:   logger,
	}
}

// Stream runs the pipeline and forwards completion deltas to w as they
// arrive. It is called after response headers are sent, so any failure is
// degraded to the XML fallback body instead of aborting the response; the
// underlying error is returned for logging only.
func (s *RecommendService) Stream(ctx context.Context, req inbound.RecommendRequest, w io.Writer) error {
	extracted := ExtractContext(req.History, req.Prompt)
	query := BuildEmbeddingQuery(req.Prompt, req.History)

	s.logger.Info("recommendation request",
		zap.Strings("ingredients", extracted.Ingredients),
		zap.Strings("meal_types", extracted.MealTypes),
		zap.String("embedding_query", query),
	)

	if err := s.stream(ctx, req, extracted, query, w); err != nil {
		s.logger.Error("recommendation pipeline failed", zap.Error(err))
		io.WriteString(w, FallbackAnswer)
		return err
	}
	return nil
}

func (s *RecommendService) stream(
	ctx context.Context,
	req inbound.RecommendRequest,
	extracted chat.ExtractedContext,
	query string,
	w io.Writer,
) error {
	embedding, err := s.embed(ctx, query)
	if err != nil {
		return err
	}

	matchCount := DefaultMatchCount
	if extracted.IsVague() {
		matchCount = VagueMatchCount
	}

	candidates, err := s.vectors.MatchRecipes(ctx, embedding, matchCount)
	if err != nil {
		return err
	}

	systemPrompt := BuildSystemPrompt(candidates, extracted)

	return s.provider.StreamChatCompletion(ctx, systemPrompt, req.History, req.Prompt, w)
}

// embed returns the embedding for query, consulting the cache first. Cache
// failures are not fatal; the provider is the source of truth.
func (s *RecommendService) embed(ctx context.Context, query string) ([]float32, error) {
	key := embeddingCacheKey(query)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && len(data) > 0 {
			var cached []float32
			if err := json.Unmarshal(data, &cached); err == nil {
				s.logger.Debug("embedding cache hit", zap.String("key", key))
				if s.metrics != nil {
					s.metrics.EmbeddingCacheHit()
				}
				return cached, nil
			}
		}
		if s.metrics != nil {
			s.metrics.EmbeddingCacheMiss()
		}
	}

	embedding, err := s.provider.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(embedding); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Debug("embedding cache set failed", zap.Error(err))
			}
		}
	}
	return embedding, nil
}

func embeddingCacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(query))))
	return "embedding:" + hex.EncodeToString(sum[:])
}
