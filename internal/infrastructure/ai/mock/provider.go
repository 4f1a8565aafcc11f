// Package mock provides a deterministic in-process AI provider for tests and
// the demo binary. No network calls are made.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/handsapp/backend/internal/domain/chat"
)

// Dimensions of the fake embedding space. Small but large enough to keep
// distinct inputs from colliding in practice.
const embeddingSize = 64

// Provider implements the AIProvider interface with canned behavior.
type Provider struct{}

// New creates a mock provider.
func New() *Provider {
	return &Provider{}
}

// GenerateEmbedding derives a stable pseudo-embedding from the text. Equal
// inputs always produce equal vectors.
func (p *Provider) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))

	vec := make([]float32, embeddingSize)
	for i := range vec {
		// Stretch the 32 digest bytes over the vector by re-hashing per lane.
		lane := sha256.Sum256(append(sum[:], byte(i)))
		bits := binary.BigEndian.Uint32(lane[:4])
		vec[i] = float32(bits%2000)/1000.0 - 1.0
	}
	return vec, nil
}

// candidateLine matches the numbered candidate enumeration inside the
// grounding prompt.
var candidateLine = regexp.MustCompile(`(?m)^\d+\. (\S+) - (.*?) — (.*?) - (\S*)$`)

// StreamChatCompletion writes a canned XML answer. When the system prompt
// enumerates candidates, the first two are echoed back as items, which makes
// the demo pipeline produce recipe cards end to end.
func (p *Provider) StreamChatCompletion(_ context.Context, systemPrompt string, _ []chat.Message, _ string, w io.Writer) error {
	matches := candidateLine.FindAllStringSubmatch(systemPrompt, 2)

	var b strings.Builder
	b.WriteString("<answer>\n<text>")
	if len(matches) == 0 {
		b.WriteString("What are you in the mood for? Tell me a meal or some ingredients!")
	} else {
		b.WriteString("Here are some ideas you might like!")
	}
	b.WriteString("</text>\n<items>\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "<item>\n<id>%s</id>\n<title>%s</title>\n<caption>%s</caption>\n<image>%s</image>\n</item>\n", m[1], m[2], m[3], m[4])
	}
	b.WriteString("</items>\n</answer>")

	_, err := io.WriteString(w, b.String())
	return err
}

// Complete returns an empty JSON object, enough for the taste vector flow.
func (p *Provider) Complete(_ context.Context, _, _ string) (string, error) {
	return "{}", nil
}
