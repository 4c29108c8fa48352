package markdown

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PageTranslation points at the same page in another language
type PageTranslation struct {
	Lang string `json:"lang"`
	Path string `json:"path"`
}

// PageMetadata overrides how a single page is rendered
type PageMetadata struct {
	Filename     string            `json:"filename"`
	Title        string            `json:"title"`
	Lang         string            `json:"lang"`
	Path         string            `json:"path"`
	Translations []PageTranslation `json:"translations"`
	Styles       []string          `json:"styles"`
}

// Metadata is the parsed metadata file
type Metadata struct {
	Pages []PageMetadata `json:"pages"`
}

// ParseMetadata decodes the JSON metadata file content
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	if m.Pages == nil {
		return nil, fmt.Errorf("parsing metadata: %q array not found", "pages")
	}
	return &m, nil
}

// Lookup finds the metadata for a page given its content name (for example
// "blog/post.md"). Entries match on filename or on the URL path the page is
// served under.
func (m *Metadata) Lookup(page string) (PageMetadata, bool) {
	if m == nil {
		return PageMetadata{}, false
	}
	urlPath := PagePath(page)
	for _, p := range m.Pages {
		if p.Filename != "" && p.Filename == page {
			return p, true
		}
		if p.Path != "" && p.Path == urlPath {
			return p, true
		}
	}
	return PageMetadata{}, false
}

// PagePath returns the URL path a Markdown content name is served under
func PagePath(page string) string {
	p := "/" + strings.TrimSuffix(strings.TrimPrefix(page, "/"), ".md")
	if p == "/index" {
		return "/"
	}
	return p
}
