// Package richtext flattens CMS rich-text values (plain strings, block trees
// and arrays of either) into plain text.
package richtext

import (
	"encoding/json"
	"reflect"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxDepth bounds recursion into nested blocks.
	DefaultMaxDepth = 32
	// SearchFallbackLimit is the JSON fallback length used for search text.
	SearchFallbackLimit = 100
	// DisplayFallbackLimit is the JSON fallback length used for display text.
	DisplayFallbackLimit = 1000

	ellipsis = "..."
)

// Extractor converts an arbitrary decoded JSON value into flat text.
// The zero value joins with "" and uses the default bounds.
type Extractor struct {
	// Sep joins the extracted elements of an array.
	Sep string
	// MaxDepth is the deepest level visited; deeper subtrees yield "".
	MaxDepth int
	// FallbackLimit truncates the JSON representation of unknown shapes.
	FallbackLimit int
}

// ForSearch returns the space-joining extractor used to build scoring text.
func ForSearch() Extractor {
	return Extractor{Sep: " ", MaxDepth: DefaultMaxDepth, FallbackLimit: SearchFallbackLimit}
}

// ForDisplay returns the extractor used to build descriptions shown to users.
func ForDisplay() Extractor {
	return Extractor{Sep: "", MaxDepth: DefaultMaxDepth, FallbackLimit: DisplayFallbackLimit}
}

// Extract flattens content joining array elements with sep.
func Extract(content any, sep string) string {
	e := ForSearch()
	e.Sep = sep
	return e.Extract(content)
}

// Extract flattens content. It never panics; unrecognized shapes degrade to
// a truncated JSON rendering.
func (e Extractor) Extract(content any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()
	return e.visit(content, 0)
}

func (e Extractor) visit(content any, depth int) string {
	if depth > e.maxDepth() {
		return ""
	}

	n := classify(content)
	switch n.kind {
	case kindNull:
		return ""
	case kindString, kindText:
		return n.text
	case kindArray:
		parts := make([]string, len(n.items))
		for i, item := range n.items {
			parts[i] = e.visit(item, depth+1)
		}
		return strings.Join(parts, e.Sep)
	case kindChildren, kindContent:
		return e.visit(n.inner, depth+1)
	default:
		return e.fallback(content)
	}
}

func (e Extractor) fallback(content any) string {
	raw, err := json.Marshal(content)
	if err != nil {
		return ""
	}
	s := string(raw)
	limit := e.FallbackLimit
	if limit <= 0 {
		limit = SearchFallbackLimit
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + ellipsis
}

func (e Extractor) maxDepth() int {
	if e.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return e.MaxDepth
}

type nodeKind int

const (
	kindNull nodeKind = iota
	kindString
	kindArray
	kindText
	kindChildren
	kindContent
	kindUnknown
)

// node is the closed set of shapes the extractor understands.
type node struct {
	kind  nodeKind
	text  string
	items []any
	inner any
}

func classify(content any) node {
	switch v := content.(type) {
	case nil:
		return node{kind: kindNull}
	case string:
		return node{kind: kindString, text: v}
	case []any:
		return node{kind: kindArray, items: v}
	case map[string]any:
		return classifyObject(v)
	}

	rv := reflect.ValueOf(content)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return node{kind: kindNull}
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return node{kind: kindArray, items: items}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return node{kind: kindUnknown}
		}
		if rv.IsNil() {
			return node{kind: kindNull}
		}
		obj := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = iter.Value().Interface()
		}
		return classifyObject(obj)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return node{kind: kindNull}
		}
	}
	return node{kind: kindUnknown}
}

func classifyObject(obj map[string]any) node {
	if t, _ := obj["type"].(string); t == "text" {
		text, _ := obj["text"].(string)
		return node{kind: kindText, text: text}
	}
	if children, ok := obj["children"]; ok && present(children) {
		return node{kind: kindChildren, inner: children}
	}
	if content, ok := obj["content"]; ok && present(content) {
		return node{kind: kindContent, inner: content}
	}
	return node{kind: kindUnknown}
}

// present mirrors a truthiness check: nil and "" are absent, an empty
// array is still present.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	}
	return true
}
