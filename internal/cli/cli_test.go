package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
)

type testEnv struct {
	dir        string
	configPath string
	lastQuery  string
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	env := &testEnv{dir: t.TempDir()}

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			env.lastQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(domain.SearchResponse{
				Results: []domain.SearchResult{{
					SearchableRecord: domain.SearchableRecord{ID: "1", Type: domain.ContentTypeTool, Title: "ChatGPT 教学助手", URL: "/tools/1"},
					Score:            12.3,
				}},
				Total:      1,
				Query:      r.URL.Query().Get("q"),
				Categories: domain.CategoryCounts{Tools: 1},
			})
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	env.configPath = filepath.Join(env.dir, ".jiaoxue.yaml")
	cfg := fmt.Sprintf(`server:
  url: %s
history:
  backend: file
  file_path: %s
output:
  colors: false
suggest:
  delay: 10ms
`, srv.URL, filepath.Join(env.dir, "history.json"))
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o600))
	return env
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var in io.Reader
	if stdin != "" {
		in = strings.NewReader(stdin)
	}
	return e.runWithInput(t, in, args...)
}

func (e *testEnv) runWithInput(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	if in != nil {
		root.SetIn(in)
	}
	err := root.Execute()
	return out.String(), err
}

// pausingReader returns its data, then waits before reporting EOF.
type pausingReader struct {
	data  []byte
	pause time.Duration
}

func (r *pausingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		time.Sleep(r.pause)
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestSearch_PrintsTableAndRecordsHistory(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "", "search", "chatgpt", "-c", "tools", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "1 results for \"chatgpt\"")
	assert.Contains(t, out, "ChatGPT 教学助手")
	assert.Contains(t, out, "/tools/1")
	assert.Contains(t, env.lastQuery, "category=tools")
	assert.Contains(t, env.lastQuery, "limit=5")

	out, err = env.run(t, "", "history", "list", "--json")
	require.NoError(t, err)
	var items []domain.SearchHistoryItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "chatgpt", items[0].Query)
	assert.Equal(t, 1, items[0].ResultCount)
}

func TestSearch_NoHistoryFlag(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.run(t, "", "search", "ai", "--no-history")
	require.NoError(t, err)

	out, err := env.run(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No search history")
}

func TestSearch_JSONOutput(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "", "search", "ai", "--json")
	require.NoError(t, err)
	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestSearch_ServerError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"search service unavailable","details":"cms down"}`))
	})

	out, err := env.run(t, "", "search", "ai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service unavailable (500): cms down")
	assert.Contains(t, out, "search temporarily unavailable")

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestSearch_InvalidCategory(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.run(t, "", "search", "ai", "-c", "videos")
	assert.Error(t, err)
}

func TestHistory_RemoveAndClear(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, q := range []string{"one", "two", "three"} {
		_, err := env.run(t, "", "search", q)
		require.NoError(t, err)
	}

	out, err := env.run(t, "", "history", "rm", "two")
	require.NoError(t, err)
	assert.Contains(t, out, `Removed "two"`)

	out, err = env.run(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "three")
	assert.Contains(t, out, "one")
	assert.NotContains(t, out, "two")
	assert.Less(t, strings.Index(out, "three"), strings.Index(out, "one"))

	_, err = env.run(t, "", "history", "clear")
	require.NoError(t, err)
	out, err = env.run(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No search history")
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "", "suggest", "chatgpt")
	require.NoError(t, err)
	assert.Contains(t, out, "ChatGPT 教学应用")

	out, err = env.run(t, "", "suggest", "c")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestSuggest_Interactive(t *testing.T) {
	env := newTestEnv(t, nil)

	out, err := env.run(t, "c\nch\nchatgpt\n", "suggest", "-i")
	require.NoError(t, err)
	assert.Contains(t, out, "chatgpt → ChatGPT 教学应用")
}

func TestSuggest_InteractiveSettledQueryPrintedOnce(t *testing.T) {
	env := newTestEnv(t, nil)

	// The 10ms debounce fires before input ends, so the final answer
	// must not repeat it.
	in := &pausingReader{data: []byte("chatgpt\n"), pause: 100 * time.Millisecond}
	out, err := env.runWithInput(t, in, "suggest", "-i")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "chatgpt → "))
}

func TestSuggestPrinter_DropsLateCallbacks(t *testing.T) {
	var buf bytes.Buffer
	p := &suggestPrinter{printer: NewPrinter(&buf, &buf, false)}

	p.deliver("ai", []string{"AI 写作"})
	p.finish("ai", []string{"AI 写作"})
	p.deliver("ai", []string{"AI 写作"})
	assert.Equal(t, 1, strings.Count(buf.String(), "ai → "))

	buf.Reset()
	q := &suggestPrinter{printer: NewPrinter(&buf, &buf, false)}
	q.deliver("ch", nil)
	q.finish("chatgpt", []string{"ChatGPT 教学应用"})
	assert.Contains(t, buf.String(), "ch → ")
	assert.Contains(t, buf.String(), "chatgpt → ChatGPT 教学应用")
}

func TestPopular(t *testing.T) {
	env := newTestEnv(t, nil)
	out, err := env.run(t, "", "popular")
	require.NoError(t, err)
	assert.Contains(t, out, "1. ChatGPT")
}

func TestLoadConfig_InvalidBackend(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.run(t, "", "--history-backend", "sqlite", "popular")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.backend")
}
