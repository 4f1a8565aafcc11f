package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
)

func testCandidates(n int) []chat.Candidate {
	out := make([]chat.Candidate, n)
	for i := range out {
		out[i] = chat.Candidate{
			ID:      fmt.Sprintf("r-%d", i+1),
			Title:   fmt.Sprintf("Recipe %d", i+1),
			Caption: "tasty",
			Image:   fmt.Sprintf("https://img/%d.jpg", i+1),
		}
	}
	return out
}

func TestBuildSystemPromptNoContextRegime(t *testing.T) {
	prompt := BuildSystemPrompt(testCandidates(8), chat.ExtractedContext{})

	assert.Contains(t, prompt, "hasn't specified ingredients or meal type")
	assert.Contains(t, prompt, "Do NOT output any <item> elements")
	assert.Contains(t, prompt, "follow-up questions")
	// No candidates are revealed when the model must ask for clarification.
	assert.NotContains(t, prompt, "Available recipes:")
}

func TestBuildSystemPromptMealTypeOnlyRegime(t *testing.T) {
	extracted := chat.ExtractedContext{MealTypes: []string{"dinner"}}
	prompt := BuildSystemPrompt(testCandidates(12), extracted)

	assert.Contains(t, prompt, "meal type: dinner")
	assert.Contains(t, prompt, "show ALL or most of the available recipes")
	assert.Contains(t, prompt, "aim for 12 recipes")
	assert.Contains(t, prompt, "Do NOT ask follow-up questions")
}

func TestBuildSystemPromptMealTypeOnlyCapsAtCandidateCount(t *testing.T) {
	extracted := chat.ExtractedContext{MealTypes: []string{"brunch"}}
	prompt := BuildSystemPrompt(testCandidates(5), extracted)

	assert.Contains(t, prompt, "aim for 5 recipes")
}

func TestBuildSystemPromptIngredientOnlyRegime(t *testing.T) {
	extracted := chat.ExtractedContext{Ingredients: []string{"chicken", "garlic"}}
	prompt := BuildSystemPrompt(testCandidates(8), extracted)

	assert.Contains(t, prompt, "ingredients: chicken, garlic")
	assert.Contains(t, prompt, "Do NOT ask follow-up questions")
	assert.NotContains(t, prompt, "MUST match BOTH")
}

func TestBuildSystemPromptBothRegime(t *testing.T) {
	extracted := chat.ExtractedContext{
		Ingredients: []string{"chicken"},
		MealTypes:   []string{"dinner"},
	}
	prompt := BuildSystemPrompt(testCandidates(8), extracted)

	assert.Contains(t, prompt, "BOTH ingredients AND meal type")
	assert.Contains(t, prompt, "They MUST match BOTH.")
	assert.Contains(t, prompt, "Contain/include the specified ingredients: chicken")
	assert.Contains(t, prompt, "appropriate for the meal type: dinner")
}

func TestBuildSystemPromptEnumeratesCandidatesVerbatim(t *testing.T) {
	candidates := []chat.Candidate{
		{ID: "abc-1", Title: "Herb Omelette", Caption: "Five minutes flat", Image: "https://img/omelette.jpg"},
	}
	extracted := chat.ExtractedContext{Ingredients: []string{"eggs"}}

	prompt := BuildSystemPrompt(candidates, extracted)

	assert.Contains(t, prompt, "1. abc-1 - Herb Omelette — Five minutes flat - https://img/omelette.jpg")
	assert.Contains(t, prompt, "Output between 1 and 1 <item> elements")
	assert.Contains(t, prompt, "Do NOT invent recipes")
	assert.Contains(t, prompt, "Do NOT repeat an id")
	assert.Contains(t, prompt, "under 25 words")
}

func TestBuildSystemPromptNoCandidates(t *testing.T) {
	prompt := BuildSystemPrompt(nil, chat.ExtractedContext{Ingredients: []string{"kale"}})

	assert.Contains(t, prompt, "No recipes were found")
	assert.Contains(t, prompt, "<answer>")
	assert.True(t, strings.Contains(prompt, "Do not output anything outside XML"))
}

func TestBuildSystemPromptAlwaysDemandsClosedXML(t *testing.T) {
	regimes := []chat.ExtractedContext{
		{},
		{Ingredients: []string{"beef"}},
		{MealTypes: []string{"lunch"}},
		{Ingredients: []string{"beef"}, MealTypes: []string{"lunch"}},
	}

	for _, extracted := range regimes {
		prompt := BuildSystemPrompt(testCandidates(3), extracted)
		assert.Contains(t, prompt, "starting with <answer> and ending with </answer>")
		assert.Contains(t, prompt, "Do NOT output any text outside the XML tags")
	}
}
