package session

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Queun/ai-teach-platform-sub000/internal/scoring"
)

const (
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"
)

// Highlighter wraps query terms found in result text with <mark> tags.
type Highlighter struct {
	patterns *scoring.PatternCache
	policy   *bluemonday.Policy
}

func NewHighlighter(patterns *scoring.PatternCache) *Highlighter {
	if patterns == nil {
		patterns, _ = scoring.NewPatternCache(scoring.DefaultPatternCacheSize)
	}
	policy := bluemonday.NewPolicy()
	policy.AllowElements("mark")
	return &Highlighter{patterns: patterns, policy: policy}
}

type segment struct {
	text   string
	marked bool
}

// Highlight marks every case-insensitive occurrence of each whitespace
// separated term of query. Terms are applied in query order and only to
// text not already marked, so stripping the tags yields text unchanged.
func (h *Highlighter) Highlight(text, query string) string {
	terms := strings.Fields(query)
	if text == "" || len(terms) == 0 {
		return text
	}

	segments := []segment{{text: text}}
	for _, term := range terms {
		re := h.patterns.Literal(term)
		next := make([]segment, 0, len(segments))
		for _, seg := range segments {
			if seg.marked {
				next = append(next, seg)
				continue
			}
			last := 0
			for _, loc := range re.FindAllStringIndex(seg.text, -1) {
				if loc[0] > last {
					next = append(next, segment{text: seg.text[last:loc[0]]})
				}
				next = append(next, segment{text: seg.text[loc[0]:loc[1]], marked: true})
				last = loc[1]
			}
			if last < len(seg.text) {
				next = append(next, segment{text: seg.text[last:]})
			}
		}
		segments = next
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, seg := range segments {
		if seg.marked {
			b.WriteString(MarkOpen)
			b.WriteString(seg.text)
			b.WriteString(MarkClose)
			continue
		}
		b.WriteString(seg.text)
	}
	return b.String()
}

// HighlightHTML is Highlight for text rendered as HTML: every element other
// than <mark> is stripped and the rest is escaped.
func (h *Highlighter) HighlightHTML(text, query string) string {
	return h.policy.Sanitize(h.Highlight(text, query))
}

// StripMarks removes highlight tags.
func StripMarks(s string) string {
	return strings.NewReplacer(MarkOpen, "", MarkClose, "").Replace(s)
}
