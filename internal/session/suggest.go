package session

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

const (
	// MinSuggestLength is the rune count below which no suggestions are made.
	MinSuggestLength = 2
	// MaxSuggestions caps a suggestion list.
	MaxSuggestions = 5
	// DefaultSuggestDelay is the debounce delay for typeahead lookups.
	DefaultSuggestDelay = 300 * time.Millisecond
)

//go:embed curated.yaml
var curatedYAML []byte

// Curated is the static suggestion data shipped with the binary.
type Curated struct {
	Suggestions []string `yaml:"suggestions"`
	Popular     []string `yaml:"popular"`
}

// LoadCurated parses a curated list document.
func LoadCurated(data []byte) (Curated, error) {
	var c Curated
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Curated{}, fmt.Errorf("parse curated list: %w", err)
	}
	return c, nil
}

// DefaultCurated returns the embedded curated list.
func DefaultCurated() Curated {
	c, err := LoadCurated(curatedYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Suggester filters a curated list by case-insensitive substring match.
type Suggester struct {
	entries []string
	folded  []string
	popular []string
}

func NewSuggester(c Curated) *Suggester {
	folded := make([]string, len(c.Suggestions))
	for i, s := range c.Suggestions {
		folded[i] = fold(s)
	}
	return &Suggester{entries: c.Suggestions, folded: folded, popular: c.Popular}
}

// Suggest returns at most MaxSuggestions entries containing query.
func (s *Suggester) Suggest(query string) []string {
	query = strings.TrimSpace(query)
	out := []string{}
	if utf8.RuneCountInString(query) < MinSuggestLength {
		return out
	}

	needle := fold(query)
	for i, entry := range s.folded {
		if strings.Contains(entry, needle) {
			out = append(out, s.entries[i])
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}

// Popular returns the queries used to seed an empty search box.
func (s *Suggester) Popular() []string {
	out := make([]string, len(s.popular))
	copy(out, s.popular)
	return out
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Debouncer delays a callback until input has been quiet for the delay.
// Each Trigger cancels the pending one.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSuggestDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the delay, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// DebouncedSuggester delivers suggestions for the latest input only.
type DebouncedSuggester struct {
	suggester *Suggester
	debouncer *Debouncer
	deliver   func(query string, suggestions []string)
}

func NewDebouncedSuggester(s *Suggester, delay time.Duration, deliver func(query string, suggestions []string)) *DebouncedSuggester {
	return &DebouncedSuggester{suggester: s, debouncer: NewDebouncer(delay), deliver: deliver}
}

// Input feeds one keystroke's worth of query text.
func (d *DebouncedSuggester) Input(query string) {
	d.debouncer.Trigger(func() {
		d.deliver(query, d.suggester.Suggest(query))
	})
}

func (d *DebouncedSuggester) Stop() {
	d.debouncer.Cancel()
}
