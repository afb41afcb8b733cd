package review_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/review"
)

func TestHeuristicAnnotator(t *testing.T) {
	annotator := review.NewHeuristicAnnotator()

	t.Run("should count gained verbs, metrics and impact words", func(t *testing.T) {
		a := annotator.Annotate(domain.FieldChange{
			SuggestionID: "s1",
			From:         "Worked on the billing service",
			To:           "Led billing service rewrite, reduced latency by 40% for 2M users",
		})

		require.Equal(t, "s1", a.SuggestionID)
		require.Equal(t, 2, a.ActionVerbs)
		require.Equal(t, 2, a.Metrics)
		require.Equal(t, 2, a.ImpactWords)
		require.Positive(t, a.LengthDelta)
		require.Equal(t, []string{"stronger action verbs", "quantified results", "business impact"}, a.Highlights)
	})

	t.Run("should not report losses as gains", func(t *testing.T) {
		a := annotator.Annotate(domain.FieldChange{From: "Led 3 teams", To: "Teams"})

		require.Zero(t, a.ActionVerbs)
		require.Zero(t, a.Metrics)
		require.Empty(t, a.Highlights)
	})

	t.Run("should flag added content", func(t *testing.T) {
		a := annotator.Annotate(domain.FieldChange{From: "", To: "Kubernetes"})
		require.Contains(t, a.Highlights, "new content")
	})
}

func TestAnnotateAll(t *testing.T) {
	out := review.AnnotateAll(review.NewHeuristicAnnotator(), []domain.FieldChange{
		{SuggestionID: "a"}, {SuggestionID: "b"},
	})
	require.Len(t, out, 2)
	require.Equal(t, "b", out[1].SuggestionID)
}
