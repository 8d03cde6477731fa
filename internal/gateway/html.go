package gateway

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}

// htmlText returns the visible text of an HTML fragment with whitespace
// collapsed. Non-HTML input is returned unchanged.
func htmlText(s string) string {
	if !looksLikeHTML(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstImageSrc returns the src of the first <img> in an HTML fragment.
func firstImageSrc(s string) string {
	if !looksLikeHTML(s) {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

// resolveMediaURL makes CMS-relative upload paths absolute against base.
func resolveMediaURL(raw string, base *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || base == nil {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || strings.HasPrefix(raw, "//") {
		return raw
	}
	return base.ResolveReference(u).String()
}

// imageURL resolves a media field given as a URL string, a media object, a
// relation envelope or an array of media.
func imageURL(v any, base *url.URL) string {
	v = unwrapRelation(v)
	switch x := v.(type) {
	case string:
		return resolveMediaURL(x, base)
	case map[string]any:
		if s, ok := x["url"].(string); ok && s != "" {
			return resolveMediaURL(s, base)
		}
		if formats, ok := x["formats"].(map[string]any); ok {
			for _, size := range []string{"medium", "small", "thumbnail", "large"} {
				if f, ok := formats[size].(map[string]any); ok {
					if s, ok := f["url"].(string); ok && s != "" {
						return resolveMediaURL(s, base)
					}
				}
			}
		}
	case []any:
		for _, item := range x {
			if s := imageURL(item, base); s != "" {
				return s
			}
		}
	}
	return ""
}
