// Package chat defines the conversational domain types shared by the
// recommendation pipeline and the chat client.
package chat

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Messages are append-only within a
// conversation and their index position is significant: recipe cards are
// attached to a specific assistant message by index.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ParsedRecipe is one recommended recipe scraped from an answer payload.
// ID and Title are always non-empty; Caption and Image may be empty.
type ParsedRecipe struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Caption string `json:"caption"`
	Image   string `json:"image"`
}

// ParsedAnswer is the structured form of one assistant answer. An empty Text
// and an empty Items slice are both valid terminal states, not errors.
type ParsedAnswer struct {
	Text  string         `json:"text"`
	Items []ParsedRecipe `json:"items"`
}

// RecipeCardData associates a parsed answer's recipe items with the assistant
// message they belong to. Created only when the answer contains at least one
// item.
type RecipeCardData struct {
	MessageIndex int          `json:"message_index"`
	Recipes      ParsedAnswer `json:"recipes"`
}

// StreamingStatus is the lifecycle of a single in-flight chat request.
type StreamingStatus string

const (
	StatusIdle       StreamingStatus = "idle"
	StatusConnecting StreamingStatus = "connecting"
	StatusStreaming  StreamingStatus = "streaming"
	StatusTyping     StreamingStatus = "typing"
	StatusError      StreamingStatus = "error"
)

// ExtractedContext is the lightweight intent summary derived from a
// conversation. It is recomputed per request and never persisted.
type ExtractedContext struct {
	Ingredients []string `json:"ingredients"`
	MealTypes   []string `json:"meal_types"`
}

// HasIngredients reports whether any ingredient keyword was detected.
func (c ExtractedContext) HasIngredients() bool { return len(c.Ingredients) > 0 }

// HasMealTypes reports whether any meal-type keyword was detected.
func (c ExtractedContext) HasMealTypes() bool { return len(c.MealTypes) > 0 }

// IsVague reports whether the request named a meal type but no ingredient.
// Vague requests retrieve more candidates to favor variety.
func (c ExtractedContext) IsVague() bool { return c.HasMealTypes() && !c.HasIngredients() }

// Candidate is one retrieval result handed to the grounding prompt.
type Candidate struct {
	ID      string
	Title   string
	Caption string
	Image   string
}
