package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/davidbz/markl/internal/observability"
)

// FallbackField is the field of the single suggestion built from an unstructured
// reply. It is not a resume path: such suggestions are for review only.
const FallbackField = "content"

const fallbackConfidence = 0.5

const suggestionItemSchema = `{
  "type": "object",
  "required": ["field", "suggestedValue"],
  "properties": {
    "type":           {"type": "string"},
    "field":          {"type": "string", "minLength": 1},
    "originalValue":  {"type": "string"},
    "suggestedValue": {"type": "string", "minLength": 1},
    "confidence":     {"type": "number"},
    "reasoning":      {"type": "string"}
  }
}`

//nolint:gochecknoglobals // compiled once
var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

type rawSuggestion struct {
	Type           SuggestionType `json:"type"`
	Field          string         `json:"field"`
	OriginalValue  string         `json:"originalValue"`
	SuggestedValue string         `json:"suggestedValue"`
	Confidence     float64        `json:"confidence"`
	Reasoning      string         `json:"reasoning"`
}

type suggestionEnvelope struct {
	Suggestions []rawSuggestion `json:"suggestions"`
}

func toRawSuggestions(suggestions []AISuggestion) []rawSuggestion {
	raw := make([]rawSuggestion, len(suggestions))
	for i, s := range suggestions {
		raw[i] = rawSuggestion{
			Type:           s.Type,
			Field:          s.Field,
			OriginalValue:  s.OriginalValue,
			SuggestedValue: s.SuggestedValue,
			Confidence:     s.Confidence,
			Reasoning:      s.Reasoning,
		}
	}
	return raw
}

// SuggestionParser turns a model reply into discrete suggestions.
type SuggestionParser struct {
	schema *gojsonschema.Schema
	newID  func() string
}

// NewSuggestionParser compiles the suggestion item schema.
func NewSuggestionParser() (*SuggestionParser, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(suggestionItemSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile suggestion schema: %w", err)
	}

	return &SuggestionParser{
		schema: schema,
		newID:  func() string { return uuid.New().String() },
	}, nil
}

// Parse extracts suggestions from reply. Items failing the schema are dropped. A reply with
// no recognisable JSON becomes a single low-confidence suggestion replacing the whole text.
// Missing original values are looked up in parsedData by field path.
func (p *SuggestionParser) Parse(
	ctx context.Context,
	reply string,
	originalText string,
	parsedData json.RawMessage,
) []AISuggestion {
	logger := observability.FromContext(ctx)

	items, ok := extractItems(reply)
	if !ok {
		logger.Warn("model reply is not structured, using fallback suggestion",
			observability.Int("reply_length", len(reply)))

		text := strings.TrimSpace(reply)
		if text == "" {
			return []AISuggestion{}
		}

		return []AISuggestion{{
			ID:             p.newID(),
			Type:           SuggestionEnhancement,
			Field:          FallbackField,
			OriginalValue:  originalText,
			SuggestedValue: text,
			Confidence:     fallbackConfidence,
			Reasoning:      "The model returned unstructured text; review the full rewrite.",
			Status:         StatusPending,
		}}
	}

	suggestions := make([]AISuggestion, 0, len(items))
	for i, item := range items {
		result, err := p.schema.Validate(gojsonschema.NewBytesLoader(item))
		if err != nil || !result.Valid() {
			logger.Warn("dropping invalid suggestion",
				observability.Int("index", i),
				observability.String("reason", schemaReason(result, err)))
			continue
		}

		var raw rawSuggestion
		if err := json.Unmarshal(item, &raw); err != nil {
			logger.Warn("dropping undecodable suggestion", observability.Int("index", i), observability.Error(err))
			continue
		}

		suggestions = append(suggestions, p.toSuggestion(raw, parsedData))
	}

	return suggestions
}

func (p *SuggestionParser) toSuggestion(raw rawSuggestion, parsedData json.RawMessage) AISuggestion {
	original := raw.OriginalValue
	if original == "" && len(parsedData) > 0 {
		if v := gjson.GetBytes(parsedData, NormalizeFieldPath(raw.Field)); v.Exists() {
			original = v.String()
		}
	}

	return AISuggestion{
		ID:             p.newID(),
		Type:           normalizeType(raw.Type),
		Field:          raw.Field,
		OriginalValue:  original,
		SuggestedValue: raw.SuggestedValue,
		Confidence:     clampConfidence(raw.Confidence),
		Reasoning:      raw.Reasoning,
		Status:         StatusPending,
	}
}

// MeanConfidence is the aggregate confidence of a suggestion set, 0 when empty.
func MeanConfidence(suggestions []AISuggestion) float64 {
	if len(suggestions) == 0 {
		return 0
	}

	var sum float64
	for _, s := range suggestions {
		sum += s.Confidence
	}
	return sum / float64(len(suggestions))
}

// NormalizeFieldPath converts "experience[0].description" into the dotted form
// "experience.0.description".
func NormalizeFieldPath(field string) string {
	path := indexPattern.ReplaceAllString(field, ".$1")
	return strings.Trim(strings.ReplaceAll(path, "..", "."), ".")
}

// CleanJSONBlock removes markdown code fences models wrap around JSON.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

// extractItems finds the suggestion array in a reply: an object with a "suggestions" array,
// a bare array, or either of those embedded in surrounding prose.
func extractItems(reply string) ([]json.RawMessage, bool) {
	text := CleanJSONBlock(reply)

	candidates := []string{text}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	for _, candidate := range candidates {
		var envelope struct {
			Suggestions []json.RawMessage `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(candidate), &envelope); err == nil && envelope.Suggestions != nil {
			return envelope.Suggestions, true
		}

		var items []json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &items); err == nil {
			return items, true
		}
	}

	return nil, false
}

func normalizeType(t SuggestionType) SuggestionType {
	switch t {
	case SuggestionImprovement, SuggestionCorrection, SuggestionEnhancement, SuggestionAddition:
		return t
	default:
		return SuggestionImprovement
	}
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

func schemaReason(result *gojsonschema.Result, err error) string {
	if err != nil {
		return err.Error()
	}

	reasons := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		reasons = append(reasons, e.String())
	}
	return strings.Join(reasons, "; ")
}
