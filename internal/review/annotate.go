package review

import (
	"regexp"
	"strings"

	"github.com/davidbz/markl/internal/domain"
)

// Annotation describes what a change gained over the original text.
type Annotation struct {
	SuggestionID string   `json:"suggestionId"`
	ActionVerbs  int      `json:"actionVerbs"`
	Metrics      int      `json:"metrics"`
	ImpactWords  int      `json:"impactWords"`
	LengthDelta  int      `json:"lengthDelta"`
	Highlights   []string `json:"highlights"`
}

// Annotator decorates field changes for display.
type Annotator interface {
	Annotate(change domain.FieldChange) Annotation
}

var (
	actionVerbs = map[string]bool{
		"achieved": true, "architected": true, "automated": true, "built": true,
		"created": true, "delivered": true, "designed": true, "developed": true,
		"drove": true, "engineered": true, "established": true, "implemented": true,
		"improved": true, "increased": true, "launched": true, "led": true,
		"managed": true, "mentored": true, "optimized": true, "reduced": true,
		"scaled": true, "shipped": true, "spearheaded": true, "streamlined": true,
		"transformed": true,
	}

	impactWords = map[string]bool{
		"revenue": true, "efficiency": true, "growth": true, "savings": true,
		"performance": true, "reliability": true, "customers": true, "users": true,
		"latency": true, "throughput": true, "adoption": true, "retention": true,
	}

	metricPattern = regexp.MustCompile(`[$€£]?\d[\d,.]*\s*(%|[kKmMbB]\b|x\b)?`)
	wordPattern   = regexp.MustCompile(`[A-Za-z]+`)
)

// HeuristicAnnotator counts action verbs, metrics and impact words gained by a change.
type HeuristicAnnotator struct{}

// NewHeuristicAnnotator creates a keyword-based annotator.
func NewHeuristicAnnotator() *HeuristicAnnotator {
	return &HeuristicAnnotator{}
}

// Annotate compares the suggested text against the original.
func (HeuristicAnnotator) Annotate(change domain.FieldChange) Annotation {
	fromVerbs, fromImpact := countWords(change.From)
	toVerbs, toImpact := countWords(change.To)
	fromMetrics := len(metricPattern.FindAllString(change.From, -1))
	toMetrics := len(metricPattern.FindAllString(change.To, -1))

	a := Annotation{
		SuggestionID: change.SuggestionID,
		ActionVerbs:  max(toVerbs-fromVerbs, 0),
		Metrics:      max(toMetrics-fromMetrics, 0),
		ImpactWords:  max(toImpact-fromImpact, 0),
		LengthDelta:  len([]rune(change.To)) - len([]rune(change.From)),
		Highlights:   []string{},
	}

	if a.ActionVerbs > 0 {
		a.Highlights = append(a.Highlights, "stronger action verbs")
	}
	if a.Metrics > 0 {
		a.Highlights = append(a.Highlights, "quantified results")
	}
	if a.ImpactWords > 0 {
		a.Highlights = append(a.Highlights, "business impact")
	}
	if change.From == "" && change.To != "" {
		a.Highlights = append(a.Highlights, "new content")
	}

	return a
}

func countWords(text string) (int, int) {
	verbs, impact := 0, 0
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if actionVerbs[w] {
			verbs++
		}
		if impactWords[w] {
			impact++
		}
	}
	return verbs, impact
}

// AnnotateAll annotates every change in order.
func AnnotateAll(annotator Annotator, changes []domain.FieldChange) []Annotation {
	out := make([]Annotation, 0, len(changes))
	for _, c := range changes {
		out = append(out, annotator.Annotate(c))
	}
	return out
}
