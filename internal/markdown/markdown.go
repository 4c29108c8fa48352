// Package markdown turns Markdown pages into complete HTML documents
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const generatorComment = "<!-- This document was automatically generated from Markdown by webserver. -->"

// Options control the document wrapper around the rendered Markdown
type Options struct {
	SiteTitle   string
	Lang        string
	Stylesheets []string
	Metadata    *Metadata
}

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

// New creates a Renderer
func New(opts Options) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
	return &Renderer{md: md, opts: opts}
}

// Render converts the Markdown source of page into an HTML document
func (r *Renderer) Render(page string, src []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := r.md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", page, err)
	}

	meta, _ := r.opts.Metadata.Lookup(page)

	title := meta.Title
	if title == "" {
		title = GenerateTitle(page)
	}
	if r.opts.SiteTitle != "" && title != r.opts.SiteTitle {
		title = title + " | " + r.opts.SiteTitle
	}

	lang := meta.Lang
	if lang == "" {
		lang = r.opts.Lang
	}

	styles := append(append([]string(nil), r.opts.Stylesheets...), meta.Styles...)

	var doc bytes.Buffer
	doc.Grow(body.Len() + 512)

	doc.WriteString(generatorComment + "\n")
	doc.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&doc, "<html lang=\"%s\">\n", html.EscapeString(lang))
	doc.WriteString("<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&doc, "<title>%s</title>\n", html.EscapeString(title))
	for _, s := range styles {
		fmt.Fprintf(&doc, "<link rel=\"stylesheet\" href=\"/style/%s\">\n", html.EscapeString(s))
	}
	for _, t := range meta.Translations {
		fmt.Fprintf(&doc, "<link rel=\"alternate\" hreflang=\"%s\" href=\"%s\">\n",
			html.EscapeString(t.Lang), html.EscapeString(t.Path))
	}
	doc.WriteString("</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")

	return doc.Bytes(), nil
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// GenerateTitle derives a page title from its content name: the last path
// segment without extension, runs of non-word characters replaced by a
// space and the first letter upper-cased
func GenerateTitle(page string) string {
	name := path.Base(strings.TrimSuffix(page, path.Ext(page)))
	if name == "." || name == "/" {
		return ""
	}
	title := strings.TrimSpace(nonWord.ReplaceAllString(name, " "))

	first, size := utf8.DecodeRuneInString(title)
	if first == utf8.RuneError {
		return title
	}
	return string(unicode.ToUpper(first)) + title[size:]
}
