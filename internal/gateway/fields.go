package gateway

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Queun/ai-teach-platform-sub000/internal/richtext"
)

// fieldChain lists the raw field names tried, in order, for one canonical field.
type fieldChain []string

// collectionFields maps the raw CMS field names of one collection onto the
// canonical record fields.
type collectionFields struct {
	title       fieldChain
	description fieldChain
	body        fieldChain
	category    fieldChain
	tags        fieldChain
	image       fieldChain
	author      fieldChain
	date        fieldChain
}

var (
	toolFields = collectionFields{
		title:       fieldChain{"name", "title"},
		description: fieldChain{"description", "shortDescription", "summary"},
		body:        fieldChain{"content", "details"},
		category:    fieldChain{"category", "type"},
		tags:        fieldChain{"tags", "features"},
		image:       fieldChain{"logo", "icon", "image", "cover", "coverImage"},
		author:      fieldChain{"developer", "author", "company"},
		date:        fieldChain{"publishedAt", "createdAt"},
	}
	newsFields = collectionFields{
		title:       fieldChain{"title", "name"},
		description: fieldChain{"excerpt", "summary", "description"},
		body:        fieldChain{"content", "body"},
		category:    fieldChain{"category", "source"},
		tags:        fieldChain{"tags", "keywords"},
		image:       fieldChain{"coverImage", "cover", "image", "thumbnail", "featuredImage"},
		author:      fieldChain{"author", "source"},
		date:        fieldChain{"publishDate", "publishedAt", "createdAt"},
	}
	resourceFields = collectionFields{
		title:       fieldChain{"title", "name"},
		description: fieldChain{"description", "summary", "excerpt"},
		body:        fieldChain{"content", "body"},
		category:    fieldChain{"category", "subject", "resourceType"},
		tags:        fieldChain{"tags", "keywords", "grades"},
		image:       fieldChain{"coverImage", "thumbnail", "image", "cover"},
		author:      fieldChain{"author", "uploader"},
		date:        fieldChain{"publishedAt", "createdAt"},
	}
)

// first returns the first present, non-empty value of the chain.
func (c fieldChain) first(attrs map[string]any) (any, bool) {
	for _, name := range c {
		v, ok := attrs[name]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// unwrapAttributes returns the inner attributes of a Strapi v4 envelope, or
// the record itself when it is already flat.
func unwrapAttributes(raw map[string]any) map[string]any {
	if attrs, ok := raw["attributes"].(map[string]any); ok {
		merged := make(map[string]any, len(attrs)+2)
		for k, v := range attrs {
			merged[k] = v
		}
		for _, key := range []string{"id", "documentId"} {
			if _, exists := merged[key]; !exists {
				if v, ok := raw[key]; ok {
					merged[key] = v
				}
			}
		}
		return merged
	}
	return raw
}

// unwrapRelation flattens {data: {attributes: {...}}} and {data: [...]}
// relation envelopes.
func unwrapRelation(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	data, ok := obj["data"]
	if !ok {
		return unwrapAttributes(obj)
	}
	switch d := data.(type) {
	case map[string]any:
		return unwrapAttributes(d)
	case []any:
		out := make([]any, len(d))
		for i, item := range d {
			out[i] = unwrapRelation(item)
		}
		return out
	default:
		return data
	}
}

// stringify renders an identifier or scalar as a string.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func toInt(v any) *int {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			n := int(i)
			return &n
		}
		if f, err := x.Float64(); err == nil {
			n := int(f)
			return &n
		}
	case float64:
		n := int(x)
		return &n
	case int:
		return &x
	case string:
		if i, err := strconv.Atoi(x); err == nil {
			return &i
		}
	}
	return nil
}

func toFloat(v any) *float64 {
	switch x := v.(type) {
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return &f
		}
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return &f
		}
	}
	return nil
}

// labelOf extracts a display label from a scalar, a relation object or a
// rich-text value.
func labelOf(v any, ex richtext.Extractor) string {
	v = unwrapRelation(v)
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		for _, key := range []string{"name", "title", "label", "username", "slug"} {
			if s, ok := x[key].(string); ok && s != "" {
				return strings.TrimSpace(s)
			}
		}
		if _, isBlock := x["type"]; isBlock {
			return strings.TrimSpace(ex.Extract(x))
		}
		return ""
	case []any:
		labels := make([]string, 0, len(x))
		for _, item := range x {
			if l := labelOf(item, ex); l != "" {
				labels = append(labels, l)
			}
		}
		return strings.Join(labels, ", ")
	}
	return stringify(v)
}

// tagsOf normalizes tags given as strings, comma-separated text, relation
// objects or arrays of any of these.
func tagsOf(v any) []string {
	v = unwrapRelation(v)
	var tags []string
	switch x := v.(type) {
	case string:
		for _, part := range strings.FieldsFunc(x, func(r rune) bool { return r == ',' || r == '，' }) {
			if p := strings.TrimSpace(part); p != "" {
				tags = append(tags, p)
			}
		}
	case []any:
		for _, item := range x {
			tags = append(tags, tagsOf(item)...)
		}
	case []string:
		for _, item := range x {
			if p := strings.TrimSpace(item); p != "" {
				tags = append(tags, p)
			}
		}
	case map[string]any:
		if l := labelOf(x, richtext.Extractor{}); l != "" {
			tags = append(tags, l)
		}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}
