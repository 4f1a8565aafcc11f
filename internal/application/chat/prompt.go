package chat

import (
	"fmt"
	"strings"

	"github.com/handsapp/backend/internal/domain/chat"
)

// BuildSystemPrompt assembles the grounding prompt for the completion
// provider. The retrieved candidates are enumerated verbatim so the model can
// only recommend recipes it was shown, and the instructions vary across four
// context regimes: no context, meal type only, ingredient(s) only, and both.
func BuildSystemPrompt(recipes []chat.Candidate, extracted chat.ExtractedContext) string {
	if len(recipes) == 0 {
		return noRecipesPrompt
	}

	var lines []string
	for i, r := range recipes {
		lines = append(lines, fmt.Sprintf("%d. %s - %s — %s - %s", i+1, r.ID, r.Title, r.Caption, r.Image))
	}
	recipeContext := strings.Join(lines, "\n")

	hasIngredients := extracted.HasIngredients()
	hasMealType := extracted.HasMealTypes()
	hasBoth := hasIngredients && hasMealType
	hasNone := !hasIngredients && !hasMealType

	ingredientList := strings.Join(extracted.Ingredients, ", ")
	mealTypeList := strings.Join(extracted.MealTypes, ", ")

	var b strings.Builder
	b.WriteString("You are Hands, a friendly and enthusiastic cooking assistant. Be warm, conversational, and helpful in your responses.\n\n")

	b.WriteString("CONTEXT AWARENESS:\n")
	b.WriteString("- Remember everything the user has mentioned in the conversation\n")
	b.WriteString("- Use whatever context is available (ingredients, meal type, or both)\n")
	b.WriteString("- Show recipes that match the available context\n\n")

	switch {
	case hasNone:
		b.WriteString("IMPORTANT: The user hasn't specified ingredients or meal type yet. Ask friendly follow-up questions to help them find the perfect recipes. Ask about:\n")
		b.WriteString("- What meal they're planning (breakfast, lunch, dinner, snack)\n")
		b.WriteString("- What ingredients they have or want to use\n")
		b.WriteString("Be warm and conversational.\n")
	case hasBoth:
		b.WriteString("CRITICAL CONTEXT FROM CONVERSATION:\n")
		fmt.Fprintf(&b, "INGREDIENTS: %s\nMEAL TYPE: %s\n\n", ingredientList, mealTypeList)
		b.WriteString("The user has specified BOTH ingredients AND meal type. You MUST ONLY show recipes that:\n")
		fmt.Fprintf(&b, "1. Contain/include the specified ingredients: %s\n", ingredientList)
		fmt.Fprintf(&b, "2. AND are appropriate for the meal type: %s\n", mealTypeList)
		b.WriteString("Do NOT show recipes that only match one criterion. They MUST match BOTH.\n")
	case hasIngredients:
		fmt.Fprintf(&b, "The user has specified ingredients: %s\n", ingredientList)
		b.WriteString("Show recipes that match this context and be enthusiastic about them.\n")
		b.WriteString("Do NOT ask follow-up questions - just show the recipes with an enthusiastic message.\n")
	default: // meal type only
		fmt.Fprintf(&b, "The user has specified meal type: %s\n", mealTypeList)
		b.WriteString("This is a variety request: show ALL or most of the available recipes ")
		fmt.Fprintf(&b, "(aim for %d recipes) to give variety.\n", min(12, len(recipes)))
		b.WriteString("Do NOT ask follow-up questions - just show the recipes with an enthusiastic message.\n")
	}

	b.WriteString("\nTONE & STYLE:\n")
	b.WriteString("- Be friendly, warm, and enthusiastic\n")
	b.WriteString("- Keep responses conversational and natural (under 25 words)\n\n")

	if !hasNone {
		b.WriteString("Available recipes:\n")
		b.WriteString(recipeContext)
		b.WriteString("\n")
	}

	b.WriteString("\nOUTPUT FORMAT:\n")
	b.WriteString("You MUST output complete, valid XML. Your ENTIRE response must be wrapped in this structure:\n\n")
	b.WriteString("<answer>\n  <text>\n    Your friendly response here (under 25 words).\n  </text>\n  <items>\n")
	if !hasNone {
		b.WriteString("    <item>\n      <id></id>\n      <title></title>\n      <caption></caption>\n      <image></image>\n    </item>\n")
	}
	b.WriteString("  </items>\n</answer>\n")

	b.WriteString("\nRULES:\n")
	if hasNone {
		b.WriteString("- Do NOT output any <item> elements (leave <items> empty)\n")
		b.WriteString("- Just ask friendly follow-up questions in the <text> tag\n")
	} else {
		fmt.Fprintf(&b, "- Output between 1 and %d <item> elements from the available recipes\n", len(recipes))
		b.WriteString("- Each <item> must use a recipe from the list above\n")
		b.WriteString("- Do NOT invent recipes or ids not in the list\n")
		b.WriteString("- Do NOT repeat an id\n")
		b.WriteString("- Filter recipes based on the user's context\n")
		b.WriteString("- Do NOT ask follow-up questions when showing recipes - just be enthusiastic!\n")
	}
	b.WriteString("- Your ENTIRE response must be valid XML (starting with <answer> and ending with </answer>)\n")
	b.WriteString("- Do NOT output any text outside the XML tags\n")
	b.WriteString("- Always close all tags completely")

	return b.String()
}

const noRecipesPrompt = `You are Hands, a friendly and enthusiastic cooking assistant. Be warm, conversational, and helpful.

Remember context from the conversation history. If the user mentioned ingredients (like "chicken") or meal types (like "lunch", "breakfast", "dinner") in previous messages, acknowledge that.

No recipes were found matching the user's request, but be friendly and helpful in your response.

Output EXACTLY this XML structure:

<answer>
  <text>
    Your friendly response here. Apologize that you couldn't find matching recipes, and suggest they try describing what ingredients they have or what type of dish they're looking for. Be warm and encouraging!
  </text>
  <items>
  </items>
</answer>

Rules:
- Be friendly and conversational
- Do not output anything outside XML`
