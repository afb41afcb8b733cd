package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/review"
)

func reviewSuggestions() []domain.AISuggestion {
	return []domain.AISuggestion{
		{ID: "s1", Field: "summary", OriginalValue: "Engineer", SuggestedValue: "Led a team of 6 engineers"},
		{ID: "s2", Field: "skills.0", OriginalValue: "go", SuggestedValue: "Go"},
		{ID: "s3", Field: "skills.1", OriginalValue: "k8s", SuggestedValue: "Kubernetes"},
	}
}

func TestReviewInteractive(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected review.Summary
	}{
		{
			name:     "one decision per suggestion",
			input:    "a\nr\na\n",
			expected: review.Summary{Total: 3, Pending: 0, Accepted: 2, Rejected: 1},
		},
		{
			name:     "accept all after the first",
			input:    "r\nA\n",
			expected: review.Summary{Total: 3, Pending: 0, Accepted: 2, Rejected: 1},
		},
		{
			name:     "unknown answers are asked again",
			input:    "maybe\n\na\nq\n",
			expected: review.Summary{Total: 3, Pending: 2, Accepted: 1, Rejected: 0},
		},
		{
			name:     "end of input leaves the rest pending",
			input:    "a\n",
			expected: review.Summary{Total: 3, Pending: 2, Accepted: 1, Rejected: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := review.NewSession(reviewSuggestions())
			require.NoError(t, err)
			var out bytes.Buffer

			err = reviewInteractive(strings.NewReader(tt.input), &out, session, review.NewHeuristicAnnotator())

			require.NoError(t, err)
			require.Equal(t, tt.expected, session.Summary())
		})
	}
}

func TestReviewInteractive_ShowsGains(t *testing.T) {
	session, err := review.NewSession(reviewSuggestions()[:1])
	require.NoError(t, err)
	var out bytes.Buffer

	require.NoError(t, reviewInteractive(strings.NewReader("a\n"), &out, session, review.NewHeuristicAnnotator()))

	require.Contains(t, out.String(), "+ Led a team of 6 engineers")
	require.Contains(t, out.String(), "gains:")
}
