package scoring

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultPatternCacheSize bounds the number of compiled term patterns kept.
const DefaultPatternCacheSize = 1024

// PatternCache memoizes compiled per-term regular expressions. Queries repeat
// heavily, and every record of a response is scored against the same terms.
type PatternCache struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// NewPatternCache creates a cache holding at most size patterns.
func NewPatternCache(size int) (*PatternCache, error) {
	if size <= 0 {
		size = DefaultPatternCacheSize
	}
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		return nil, err
	}
	return &PatternCache{cache: c}, nil
}

// WholeWord returns a case-insensitive pattern matching term on word boundaries.
func (p *PatternCache) WholeWord(term string) *regexp.Regexp {
	return p.get(`(?i)\b`+regexp.QuoteMeta(term)+`\b`)
}

// Literal returns a case-insensitive pattern matching term anywhere.
func (p *PatternCache) Literal(term string) *regexp.Regexp {
	return p.get(`(?i)` + regexp.QuoteMeta(term))
}

func (p *PatternCache) get(expr string) *regexp.Regexp {
	if re, ok := p.cache.Get(expr); ok {
		return re
	}
	// expr is built from QuoteMeta output, so it always compiles.
	re := regexp.MustCompile(expr)
	p.cache.Add(expr, re)
	return re
}

// Len reports the number of cached patterns.
func (p *PatternCache) Len() int {
	return p.cache.Len()
}
