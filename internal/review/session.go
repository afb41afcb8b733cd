// Package review tracks accept/reject decisions over a set of suggestions.
package review

import (
	"errors"
	"fmt"
	"sync"

	"github.com/davidbz/markl/internal/domain"
)

var (
	// ErrSuggestionNotFound is returned for an id outside the session.
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrSuggestionDecided is returned when a decided suggestion is flipped.
	ErrSuggestionDecided = errors.New("suggestion already decided")
)

// Summary counts suggestions per status. Pending+Accepted+Rejected always equals Total.
type Summary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Session owns the review state of one enhancement result.
type Session struct {
	mu          sync.Mutex
	suggestions []domain.AISuggestion
	index       map[string]int
}

// NewSession starts a review over a copy of the suggestions.
// Suggestions with a missing or unknown status start pending. Ids must be unique.
func NewSession(suggestions []domain.AISuggestion) (*Session, error) {
	s := &Session{
		suggestions: make([]domain.AISuggestion, len(suggestions)),
		index:       make(map[string]int, len(suggestions)),
	}

	copy(s.suggestions, suggestions)
	for i := range s.suggestions {
		sg := &s.suggestions[i]
		switch sg.Status {
		case domain.StatusPending, domain.StatusAccepted, domain.StatusRejected:
		default:
			sg.Status = domain.StatusPending
		}

		if _, ok := s.index[sg.ID]; ok {
			return nil, &domain.ValidationError{
				Field:   "suggestions",
				Message: fmt.Sprintf("duplicate suggestion id %q", sg.ID),
			}
		}
		s.index[sg.ID] = i
	}

	return s, nil
}

// AcceptOne marks a suggestion accepted.
func (s *Session) AcceptOne(id string) error {
	return s.decide(id, domain.StatusAccepted)
}

// RejectOne marks a suggestion rejected.
func (s *Session) RejectOne(id string) error {
	return s.decide(id, domain.StatusRejected)
}

// AcceptAll accepts every pending suggestion and returns how many changed.
func (s *Session) AcceptAll() int {
	return s.decideAll(domain.StatusAccepted)
}

// RejectAll rejects every pending suggestion and returns how many changed.
func (s *Session) RejectAll() int {
	return s.decideAll(domain.StatusRejected)
}

// Summary returns the per-status counts.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{Total: len(s.suggestions)}
	for _, sg := range s.suggestions {
		switch sg.Status {
		case domain.StatusAccepted:
			summary.Accepted++
		case domain.StatusRejected:
			summary.Rejected++
		default:
			summary.Pending++
		}
	}

	return summary
}

// Suggestions returns a snapshot of all suggestions in their original order.
func (s *Session) Suggestions() []domain.AISuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AISuggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// Accepted returns the accepted suggestions in their original order.
func (s *Session) Accepted() []domain.AISuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AISuggestion, 0, len(s.suggestions))
	for _, sg := range s.suggestions {
		if sg.Status == domain.StatusAccepted {
			out = append(out, sg)
		}
	}
	return out
}

// ComputeDiff returns one field change per accepted suggestion.
// Calling it repeatedly without new decisions yields the same diff.
func (s *Session) ComputeDiff() []domain.FieldChange {
	accepted := s.Accepted()

	changes := make([]domain.FieldChange, 0, len(accepted))
	for _, sg := range accepted {
		changes = append(changes, domain.FieldChange{
			SuggestionID: sg.ID,
			Field:        sg.Field,
			From:         sg.OriginalValue,
			To:           sg.SuggestedValue,
		})
	}
	return changes
}

func (s *Session) decide(id string, status domain.SuggestionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSuggestionNotFound, id)
	}

	switch s.suggestions[i].Status {
	case status:
		return nil
	case domain.StatusPending:
		s.suggestions[i].Status = status
		return nil
	default:
		return fmt.Errorf("%w: %s is %s", ErrSuggestionDecided, id, s.suggestions[i].Status)
	}
}

func (s *Session) decideAll(status domain.SuggestionStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.suggestions {
		if s.suggestions[i].Status == domain.StatusPending {
			s.suggestions[i].Status = status
			changed++
		}
	}
	return changed
}
