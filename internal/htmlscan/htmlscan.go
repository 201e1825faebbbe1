package htmlscan

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const maxSnippet = 200

// Resource is a subresource reference found in a page: a script with src or
// a stylesheet link with href.
type Resource struct {
	Tag          string
	URL          string
	Integrity    string
	HasIntegrity bool
	Snippet      string
}

// ShouldScan checks if the content type (or a sniff of the body when the
// header is absent) indicates HTML.
func ShouldScan(contentType string, body []byte) bool {
	if contentType == "" {
		if len(body) == 0 {
			return false
		}
		contentType = http.DetectContentType(body)
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// Resources decodes body to UTF-8 using the declared or sniffed charset and
// returns every script and stylesheet reference in document order.
func Resources(body []byte, contentType string) ([]Resource, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	var out []Resource
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return out, nil
			}
			return out, fmt.Errorf("tokenize body: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, hasAttr := z.TagName()
			if !hasAttr {
				continue
			}
			tag := string(name)
			if tag != "script" && tag != "link" {
				continue
			}
			attrs := readAttrs(z)
			if res, ok := toResource(tag, attrs, raw); ok {
				out = append(out, res)
			}
		}
	}
}

func readAttrs(z *html.Tokenizer) map[string]string {
	attrs := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		k := strings.ToLower(string(key))
		if _, dup := attrs[k]; !dup {
			attrs[k] = string(val)
		}
		if !more {
			return attrs
		}
	}
}

func toResource(tag string, attrs map[string]string, raw string) (Resource, bool) {
	var ref string
	switch tag {
	case "script":
		ref = strings.TrimSpace(attrs["src"])
	case "link":
		if !hasToken(attrs["rel"], "stylesheet") {
			return Resource{}, false
		}
		ref = strings.TrimSpace(attrs["href"])
	}
	if ref == "" {
		return Resource{}, false
	}
	integrity, has := attrs["integrity"]
	integrity = strings.TrimSpace(integrity)
	return Resource{
		Tag:          tag,
		URL:          ref,
		Integrity:    integrity,
		HasIntegrity: has && integrity != "",
		Snippet:      truncate(raw, maxSnippet),
	}, true
}

func hasToken(list, want string) bool {
	for _, tok := range strings.Fields(strings.ToLower(list)) {
		if tok == want {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
