package review_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/review"
)

func sampleSuggestions() []domain.AISuggestion {
	return []domain.AISuggestion{
		{ID: "s1", Field: "summary", OriginalValue: "Dev", SuggestedValue: "Senior developer"},
		{ID: "s2", Field: "experience[0].description", OriginalValue: "Did work", SuggestedValue: "Led migration"},
		{ID: "s3", Field: "skills", OriginalValue: "", SuggestedValue: "Go", Status: domain.StatusPending},
	}
}

func newSession(t *testing.T, suggestions []domain.AISuggestion) *review.Session {
	t.Helper()
	s, err := review.NewSession(suggestions)
	require.NoError(t, err)
	return s
}

func TestNewSession(t *testing.T) {
	t.Run("should reset unknown statuses to pending", func(t *testing.T) {
		input := sampleSuggestions()
		input[0].Status = "bogus"
		s := newSession(t, input)

		require.Equal(t, review.Summary{Total: 3, Pending: 3}, s.Summary())
		require.NoError(t, s.AcceptOne("s1"))
		require.Equal(t, domain.StatusAccepted, s.Suggestions()[0].Status)
	})

	t.Run("should keep decided statuses", func(t *testing.T) {
		input := sampleSuggestions()
		input[1].Status = domain.StatusRejected
		s := newSession(t, input)

		require.Equal(t, review.Summary{Total: 3, Pending: 2, Rejected: 1}, s.Summary())
		require.ErrorIs(t, s.AcceptOne("s2"), review.ErrSuggestionDecided)
	})

	t.Run("should reject duplicate ids", func(t *testing.T) {
		input := sampleSuggestions()
		input[2].ID = "s1"

		s, err := review.NewSession(input)
		require.Nil(t, s)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Message, `"s1"`)
	})
}

func TestSession_Decisions(t *testing.T) {
	t.Run("should start every suggestion pending", func(t *testing.T) {
		s := newSession(t, sampleSuggestions())
		require.Equal(t, review.Summary{Total: 3, Pending: 3}, s.Summary())
	})

	t.Run("should accept and reject individual suggestions", func(t *testing.T) {
		s := newSession(t, sampleSuggestions())

		require.NoError(t, s.AcceptOne("s1"))
		require.NoError(t, s.RejectOne("s2"))

		require.Equal(t, review.Summary{Total: 3, Pending: 1, Accepted: 1, Rejected: 1}, s.Summary())
	})

	t.Run("should treat repeating a decision as a no-op", func(t *testing.T) {
		s := newSession(t, sampleSuggestions())

		require.NoError(t, s.AcceptOne("s1"))
		require.NoError(t, s.AcceptOne("s1"))
		require.Equal(t, 1, s.Summary().Accepted)
	})

	t.Run("should refuse to flip a decided suggestion", func(t *testing.T) {
		s := newSession(t, sampleSuggestions())

		require.NoError(t, s.AcceptOne("s1"))
		require.ErrorIs(t, s.RejectOne("s1"), review.ErrSuggestionDecided)
		require.Equal(t, 1, s.Summary().Accepted)
	})

	t.Run("should report unknown ids", func(t *testing.T) {
		s := newSession(t, sampleSuggestions())
		require.ErrorIs(t, s.AcceptOne("nope"), review.ErrSuggestionNotFound)
	})

	t.Run("should bulk decide only pending suggestions", func(t *testing.T) {
		s := newSession(t, sampleSuggestions())

		require.NoError(t, s.RejectOne("s2"))
		require.Equal(t, 2, s.AcceptAll())
		require.Equal(t, 0, s.RejectAll())

		require.Equal(t, review.Summary{Total: 3, Accepted: 2, Rejected: 1}, s.Summary())
	})

	t.Run("should not mutate the caller's slice", func(t *testing.T) {
		input := sampleSuggestions()
		s := newSession(t, input)
		s.AcceptAll()

		require.Empty(t, input[0].Status)
	})
}

func TestSession_CountsInvariant(t *testing.T) {
	ids := []string{"s1", "s2", "s3", "missing"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		s := newSession(t, sampleSuggestions())
		decided := map[string]domain.SuggestionStatus{}

		for step := 0; step < 10; step++ {
			switch rng.Intn(4) {
			case 0:
				_ = s.AcceptOne(ids[rng.Intn(len(ids))])
			case 1:
				_ = s.RejectOne(ids[rng.Intn(len(ids))])
			case 2:
				s.AcceptAll()
			case 3:
				s.RejectAll()
			}

			summary := s.Summary()
			require.Equal(t, summary.Total, summary.Pending+summary.Accepted+summary.Rejected)

			for _, sg := range s.Suggestions() {
				if prev, ok := decided[sg.ID]; ok {
					require.Equal(t, prev, sg.Status, "decided suggestion changed state")
				}
				if sg.Status != domain.StatusPending {
					decided[sg.ID] = sg.Status
				}
			}
		}
	}
}

func TestSession_ComputeDiff(t *testing.T) {
	s := newSession(t, sampleSuggestions())
	require.Empty(t, s.ComputeDiff())

	require.NoError(t, s.AcceptOne("s2"))
	require.NoError(t, s.AcceptOne("s1"))

	diff := s.ComputeDiff()
	require.Equal(t, []domain.FieldChange{
		{SuggestionID: "s1", Field: "summary", From: "Dev", To: "Senior developer"},
		{SuggestionID: "s2", Field: "experience[0].description", From: "Did work", To: "Led migration"},
	}, diff)
	require.Equal(t, diff, s.ComputeDiff())
}
