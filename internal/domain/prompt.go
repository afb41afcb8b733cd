package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

//nolint:gochecknoglobals // read-only lookup table
var levelGuidance = map[EnhancementLevel]string{
	LevelLight: "Make light edits only: fix grammar, spelling and awkward phrasing. " +
		"Keep the author's wording wherever it already works.",
	LevelModerate: "Improve clarity and impact: use strong action verbs, tighten sentences " +
		"and surface measurable results that are already implied by the text.",
	LevelComprehensive: "Rewrite thoroughly for maximum impact: restructure bullets, quantify " +
		"achievements, align terminology with the target role and propose additions where the " +
		"resume has obvious gaps.",
}

const responseFormat = `Respond with JSON only, no prose, in exactly this shape:
{
  "suggestions": [
    {
      "type": "improvement | correction | enhancement | addition",
      "field": "path of the resume field, e.g. personalInfo.summary or experience[0].description",
      "originalValue": "the current text of that field",
      "suggestedValue": "your proposed replacement text",
      "confidence": 0.0,
      "reasoning": "one sentence explaining the change"
    }
  ]
}
confidence is a number between 0 and 1.`

// BuildEnhancementMessages builds the conversation for a first enhancement call.
func BuildEnhancementMessages(opts EnhancementOptions, originalText string, parsedData json.RawMessage) []Message {
	var b strings.Builder

	b.WriteString("You are an expert resume writer and career coach. ")
	b.WriteString("Review the resume below and propose discrete, field-level improvements.\n\n")

	level := opts.EnhancementLevel
	if _, ok := levelGuidance[level]; !ok {
		level = LevelModerate
	}
	fmt.Fprintf(&b, "Enhancement level: %s. %s\n\n", level, levelGuidance[level])

	if len(opts.FocusAreas) > 0 {
		fmt.Fprintf(&b, "Focus on these areas: %s.\n\n", strings.Join(opts.FocusAreas, ", "))
	}

	if opts.JobDescription != "" {
		fmt.Fprintf(&b, "Tailor the resume to this job description:\n%s\n\n", opts.JobDescription)
	}

	if opts.UserInstructions != "" {
		fmt.Fprintf(&b, "Additional instructions from the candidate:\n%s\n\n", SanitizeInstructions(opts.UserInstructions))
	}

	fmt.Fprintf(&b, "Resume text:\n%s\n\n", originalText)

	if len(parsedData) > 0 && string(parsedData) != "null" {
		fmt.Fprintf(&b, "Structured resume data (use these paths for the field property):\n%s\n\n", parsedData)
	}

	b.WriteString(responseFormat)

	return []Message{{Role: RoleUser, Content: b.String()}}
}

// BuildRefinementMessages extends the first-call conversation with the previous suggestions
// and sanitized refinement instructions.
func BuildRefinementMessages(
	opts EnhancementOptions,
	originalText string,
	parsedData json.RawMessage,
	previous []AISuggestion,
	instructions string,
) ([]Message, error) {
	messages := BuildEnhancementMessages(opts, originalText, parsedData)

	prior, err := json.Marshal(suggestionEnvelope{Suggestions: toRawSuggestions(previous)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode previous suggestions: %w", err)
	}

	refinement := fmt.Sprintf(
		"Refine your previous suggestions according to these instructions:\n%s\n\n%s",
		SanitizeInstructions(instructions),
		responseFormat,
	)

	return append(messages,
		Message{Role: RoleAssistant, Content: string(prior)},
		Message{Role: RoleUser, Content: refinement},
	), nil
}

// PromptText concatenates message contents for token estimation.
func PromptText(messages []Message) string {
	parts := make([]string, len(messages))
	for i, msg := range messages {
		parts[i] = msg.Content
	}
	return strings.Join(parts, "\n\n")
}
