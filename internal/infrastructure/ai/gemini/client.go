// Package gemini provides the Google Gemini adapter for embeddings and chat
// completions.
package gemini

import (
	"context"
	"fmt"
	"io"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/infrastructure/config"
)

const embeddingModel = "text-embedding-004"

// Client implements the AIProvider interface against the Gemini API
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      *zap.Logger
}

// NewClient creates a new Gemini client from the AI configuration
func NewClient(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:      client,
		model:       cfg.GeminiModel,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		logger:      logger.Named("gemini"),
	}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

// GenerateEmbedding returns the embedding vector for text.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	em := c.client.EmbeddingModel(embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return res.Embedding.Values, nil
}

// Complete runs a non-streaming chat completion.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := c.generativeModel(systemPrompt)

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	return collectText(resp), nil
}

// StreamChatCompletion streams a completion, writing each content delta to w
// as it arrives.
func (c *Client) StreamChatCompletion(ctx context.Context, systemPrompt string, history []chat.Message, prompt string, w io.Writer) error {
	model := c.generativeModel(systemPrompt)

	session := model.StartChat()
	session.History = toGenaiHistory(history)

	iter := session.SendMessageStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream read failed: %w", err)
		}
		if delta := collectText(resp); delta != "" {
			if _, err := io.WriteString(w, delta); err != nil {
				return fmt.Errorf("failed to forward delta: %w", err)
			}
		}
	}
}

func (c *Client) generativeModel(systemPrompt string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	if c.maxTokens > 0 {
		model.SetMaxOutputTokens(c.maxTokens)
	}
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	return model
}

// toGenaiHistory maps chat roles to Gemini's user/model convention.
func toGenaiHistory(history []chat.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == chat.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return out
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}
	return text
}
