// Package scoring implements the lexical relevance model used to rank
// search results.
package scoring

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
)

// Threshold is the minimum aggregate score a record must exceed to match.
const Threshold = 0.5

const (
	substringBonus = 2.0
	prefixBonus    = 1.0
	wholeWordBonus = 1.0
	bigramBonus    = 0.1
)

// Weights are the per-field multipliers applied by ScoreRecord.
type Weights struct {
	Title       float64
	Description float64
	Tags        float64
	Category    float64
}

// DefaultWeights favour title and tag matches.
var DefaultWeights = Weights{
	Title:       3,
	Description: 1,
	Tags:        2,
	Category:    1.5,
}

// Scorer computes field and record scores.
type Scorer struct {
	weights  Weights
	patterns *PatternCache
}

// NewScorer returns a Scorer using the given weights and pattern cache.
// A nil cache gets a default-sized one.
func NewScorer(weights Weights, patterns *PatternCache) *Scorer {
	if patterns == nil {
		patterns, _ = NewPatternCache(DefaultPatternCacheSize)
	}
	return &Scorer{weights: weights, patterns: patterns}
}

var defaultScorer = NewScorer(DefaultWeights, nil)

// Score scores text against query with the default scorer.
func Score(text, query string, weight float64) float64 {
	return defaultScorer.Score(text, query, weight)
}

// Terms lowercases query and splits it on whitespace.
func Terms(query string) []string {
	return strings.Fields(lower(query))
}

// Score returns the weighted relevance of one field's text. It is zero when
// either input is empty and never negative.
func (s *Scorer) Score(text, query string, weight float64) float64 {
	if text == "" || query == "" || weight <= 0 {
		return 0
	}

	lowerText := lower(text)
	var score float64
	for _, term := range Terms(query) {
		if strings.Contains(lowerText, term) {
			score += weight * substringBonus
			if strings.HasPrefix(lowerText, term) {
				score += weight * prefixBonus
			}
			if s.patterns.WholeWord(term).MatchString(text) {
				score += weight * wholeWordBonus
			}
		}

		if utf8.RuneCountInString(term) > 2 {
			runes := []rune(term)
			for i := 0; i < len(runes)-1; i++ {
				if strings.Contains(lowerText, string(runes[i:i+2])) {
					score += weight * bigramBonus
				}
			}
		}
	}
	return score
}

// ScoreRecord sums the weighted scores of the record's searchable fields.
// Tags are scored as one space-joined string.
func (s *Scorer) ScoreRecord(rec domain.SearchableRecord, query string) float64 {
	return s.Score(rec.Title, query, s.weights.Title) +
		s.Score(rec.Description, query, s.weights.Description) +
		s.Score(strings.Join(rec.Tags, " "), query, s.weights.Tags) +
		s.Score(rec.Category, query, s.weights.Category)
}

// Matches reports whether an aggregate score clears the threshold.
func Matches(score float64) bool {
	return score > Threshold
}

// lower folds case with Unicode-aware rules. Casers are not safe for
// concurrent use, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
