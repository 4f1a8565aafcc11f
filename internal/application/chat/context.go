// Package chat implements the conversational recommendation pipeline:
// context extraction, embedding-query construction, grounding-prompt
// assembly, and the streaming recommendation service.
package chat

import (
	"strings"

	"github.com/handsapp/backend/internal/domain/chat"
)

// Fixed keyword vocabularies. Matching follows vocabulary iteration order,
// not text occurrence order, so extraction output is deterministic.
var ingredientKeywords = []string{
	"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "turkey", "lamb",
	"vegetables", "vegetable", "pasta", "rice", "quinoa", "potato", "tomato", "onion", "garlic",
	"cheese", "milk", "eggs", "tofu", "beans", "lentils", "mushroom", "spinach", "kale", "broccoli",
}

var mealTypeKeywords = []string{
	"breakfast", "lunch", "dinner", "snack", "appetizer", "dessert", "brunch",
}

// ExtractContext scans the conversation history plus the current prompt for
// known ingredient and meal-type keywords. Matching is a case-insensitive
// substring check over the concatenated text; hits are de-duplicated by
// construction since each vocabulary entry is tested once.
func ExtractContext(history []chat.Message, prompt string) chat.ExtractedContext {
	var parts []string
	for _, msg := range history {
		parts = append(parts, strings.ToLower(msg.Content))
	}
	if prompt != "" {
		parts = append(parts, strings.ToLower(prompt))
	}
	allText := strings.Join(parts, " ")

	ctx := chat.ExtractedContext{
		Ingredients: []string{},
		MealTypes:   []string{},
	}
	for _, keyword := range ingredientKeywords {
		if strings.Contains(allText, keyword) {
			ctx.Ingredients = append(ctx.Ingredients, keyword)
		}
	}
	for _, keyword := range mealTypeKeywords {
		if strings.Contains(allText, keyword) {
			ctx.MealTypes = append(ctx.MealTypes, keyword)
		}
	}
	return ctx
}

// BuildEmbeddingQuery builds the text actually sent to the embedding
// provider. Matched ingredients come first, then meal types, then the raw
// prompt when it is not already subsumed by the earlier parts. With no
// matched context the prompt is returned unchanged.
func BuildEmbeddingQuery(prompt string, history []chat.Message) string {
	ctx := ExtractContext(history, prompt)

	var parts []string
	if ctx.HasIngredients() {
		parts = append(parts, strings.Join(ctx.Ingredients, " "))
	}
	if ctx.HasMealTypes() {
		parts = append(parts, strings.Join(ctx.MealTypes, " "))
	}

	if prompt != "" && !promptSubsumed(prompt, parts) {
		parts = append(parts, prompt)
	}

	if len(parts) == 0 {
		return prompt
	}
	return strings.Join(parts, " ")
}

// promptSubsumed reports whether the prompt already contains one of the
// context parts, in which case appending it would only repeat information.
func promptSubsumed(prompt string, parts []string) bool {
	lower := strings.ToLower(prompt)
	for _, part := range parts {
		if strings.Contains(lower, strings.ToLower(part)) {
			return true
		}
	}
	return false
}
