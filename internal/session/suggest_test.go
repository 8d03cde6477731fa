package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurated() Curated {
	return Curated{
		Suggestions: []string{
			"ChatGPT 教学应用",
			"ChatGPT prompt templates",
			"AI 写作助手",
			"AI 批改作业",
			"AI lesson planning",
			"AI 课件制作",
			"AI 数学辅导",
			"智能题库",
		},
		Popular: []string{"ChatGPT", "AI 写作"},
	}
}

func TestSuggest(t *testing.T) {
	s := NewSuggester(testCurated())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"too short", "c", []string{}},
		{"single cjk rune", "智", []string{}},
		{"blank", "   ", []string{}},
		{"case insensitive", "chatgpt", []string{"ChatGPT 教学应用", "ChatGPT prompt templates"}},
		{"cjk substring", "题库", []string{"智能题库"}},
		{"capped at five", "ai", []string{"AI 写作助手", "AI 批改作业", "AI lesson planning", "AI 课件制作", "AI 数学辅导"}},
		{"no match", "xyzzy", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Suggest(tt.query))
		})
	}
}

func TestDefaultCurated(t *testing.T) {
	c := DefaultCurated()
	assert.NotEmpty(t, c.Suggestions)
	assert.NotEmpty(t, c.Popular)

	s := NewSuggester(c)
	assert.LessOrEqual(t, len(s.Suggest("AI")), MaxSuggestions)
}

func TestLoadCurated_Invalid(t *testing.T) {
	_, err := LoadCurated([]byte("suggestions: [unterminated"))
	assert.Error(t, err)
}

func TestPopularReturnsCopy(t *testing.T) {
	s := NewSuggester(testCurated())
	p := s.Popular()
	p[0] = "changed"
	assert.Equal(t, "ChatGPT", s.Popular()[0])
}

func TestDebouncedSuggester_DeliversLatestOnly(t *testing.T) {
	var (
		mu        sync.Mutex
		delivered []string
	)
	done := make(chan struct{}, 4)
	d := NewDebouncedSuggester(NewSuggester(testCurated()), 30*time.Millisecond, func(q string, _ []string) {
		mu.Lock()
		delivered = append(delivered, q)
		mu.Unlock()
		done <- struct{}{}
	})
	defer d.Stop()

	d.Input("c")
	d.Input("ch")
	d.Input("cha")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("suggestions were never delivered")
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Equal(t, "cha", delivered[0])
}

func TestDebouncer_Cancel(t *testing.T) {
	fired := make(chan struct{}, 1)
	d := NewDebouncer(20 * time.Millisecond)
	d.Trigger(func() { fired <- struct{}{} })
	d.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled call fired")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultSuggestDelay, NewDebouncer(0).delay)
}
