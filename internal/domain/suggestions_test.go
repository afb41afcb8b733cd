package domain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
)

func TestSuggestionParser_Parse(t *testing.T) {
	ctx := context.Background()
	parser, err := domain.NewSuggestionParser()
	require.NoError(t, err)

	tests := []struct {
		name   string
		reply  string
		fields []string
	}{
		{
			name:   "envelope object",
			reply:  `{"suggestions":[{"field":"summary","suggestedValue":"Better"}]}`,
			fields: []string{"summary"},
		},
		{
			name:   "bare array",
			reply:  `[{"field":"a","suggestedValue":"x"},{"field":"b","suggestedValue":"y"}]`,
			fields: []string{"a", "b"},
		},
		{
			name:   "fenced block",
			reply:  "```json\n{\"suggestions\":[{\"field\":\"summary\",\"suggestedValue\":\"Better\"}]}\n```",
			fields: []string{"summary"},
		},
		{
			name:   "embedded in prose",
			reply:  "Sure! Here you go:\n{\"suggestions\":[{\"field\":\"skills\",\"suggestedValue\":\"Go\"}]}\nGood luck.",
			fields: []string{"skills"},
		},
		{
			name:   "invalid items are dropped",
			reply:  `{"suggestions":[{"field":"a"},{"suggestedValue":"x"},{"field":"ok","suggestedValue":"y"},"junk"]}`,
			fields: []string{"ok"},
		},
		{
			name:   "empty suggestion list",
			reply:  `{"suggestions":[]}`,
			fields: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := parser.Parse(ctx, tt.reply, "original", nil)

			fields := make([]string, 0, len(suggestions))
			for _, s := range suggestions {
				fields = append(fields, s.Field)
				require.Equal(t, domain.StatusPending, s.Status)
			}
			require.Equal(t, tt.fields, fields)
		})
	}
}

func TestSuggestionParser_Normalization(t *testing.T) {
	parser, err := domain.NewSuggestionParser()
	require.NoError(t, err)

	reply := `[
	  {"type":"rewrite","field":"a","suggestedValue":"x","confidence":1.7},
	  {"type":"correction","field":"b","suggestedValue":"y","confidence":-0.2}
	]`

	suggestions := parser.Parse(context.Background(), reply, "", nil)

	require.Len(t, suggestions, 2)
	require.Equal(t, domain.SuggestionImprovement, suggestions[0].Type)
	require.InDelta(t, 1.0, suggestions[0].Confidence, 1e-9)
	require.Equal(t, domain.SuggestionCorrection, suggestions[1].Type)
	require.InDelta(t, 0.0, suggestions[1].Confidence, 1e-9)
	require.NotEqual(t, suggestions[0].ID, suggestions[1].ID)
}

func TestSuggestionParser_OriginalFromParsedData(t *testing.T) {
	parser, err := domain.NewSuggestionParser()
	require.NoError(t, err)

	parsed := json.RawMessage(`{"experience":[{"description":"Wrote code."}]}`)
	reply := `[{"field":"experience[0].description","suggestedValue":"Shipped 12 services in Go."}]`

	suggestions := parser.Parse(context.Background(), reply, "", parsed)

	require.Len(t, suggestions, 1)
	require.Equal(t, "Wrote code.", suggestions[0].OriginalValue)
}

func TestSuggestionParser_Fallback(t *testing.T) {
	parser, err := domain.NewSuggestionParser()
	require.NoError(t, err)

	t.Run("prose becomes one whole-text suggestion", func(t *testing.T) {
		suggestions := parser.Parse(context.Background(), "  A rewritten resume.  ", "old resume", nil)

		require.Len(t, suggestions, 1)
		require.Equal(t, domain.SuggestionEnhancement, suggestions[0].Type)
		require.Equal(t, "old resume", suggestions[0].OriginalValue)
		require.Equal(t, "A rewritten resume.", suggestions[0].SuggestedValue)
		require.InDelta(t, 0.5, suggestions[0].Confidence, 1e-9)
	})

	t.Run("blank reply yields nothing", func(t *testing.T) {
		require.Empty(t, parser.Parse(context.Background(), "   ", "old", nil))
	})
}

func TestNormalizeFieldPath(t *testing.T) {
	require.Equal(t, "experience.0.description", domain.NormalizeFieldPath("experience[0].description"))
	require.Equal(t, "skills.2", domain.NormalizeFieldPath("skills[2]"))
	require.Equal(t, "personalInfo.summary", domain.NormalizeFieldPath("personalInfo.summary"))
}

func TestCleanJSONBlock(t *testing.T) {
	require.Equal(t, `{"a":1}`, domain.CleanJSONBlock("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, domain.CleanJSONBlock("```\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, domain.CleanJSONBlock(`  {"a":1}  `))
}

func TestMeanConfidence(t *testing.T) {
	require.Zero(t, domain.MeanConfidence(nil))
	require.InDelta(t, 0.6, domain.MeanConfidence([]domain.AISuggestion{{Confidence: 0.4}, {Confidence: 0.8}}), 1e-9)
}
