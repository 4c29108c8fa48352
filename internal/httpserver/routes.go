package httpserver

import (
	"fmt"
	"path"
	"strings"

	"webserver/internal/wire"
)

// Content is the read side of the content store
type Content interface {
	ReadFile(name string) ([]byte, error)
	ReadText(name string) ([]byte, error)
}

// PageRenderer turns a Markdown page into an HTML document
type PageRenderer interface {
	Render(page string, src []byte) ([]byte, error)
}

// StyleCompiler compiles SCSS to CSS
type StyleCompiler interface {
	Compile(src string) (string, error)
}

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeCSS  = "text/css"
	contentTypeIcon = "image/x-icon"
)

// Route patterns, in registration order
const (
	FaviconPattern = `/favicon\.ico`
	PagePattern    = `(/[0-9A-Za-z_-]*)+`
	AssetPattern   = `/.+\..+`
)

// DefaultRoutes returns the site routes: the favicon, Markdown pages and
// then any path with an extension
func DefaultRoutes(content Content, pages PageRenderer, styles StyleCompiler) []Route {
	return []Route{
		MustRoute("favicon", wire.MethodGet, FaviconPattern, faviconHandler(content)),
		MustRoute("page", wire.MethodGet, PagePattern, pageHandler(content, pages)),
		MustRoute("asset", wire.MethodGet, AssetPattern, assetHandler(content, styles)),
	}
}

func faviconHandler(content Content) Handler {
	return HandlerFunc(func(string) (Result, error) {
		data, err := content.ReadFile("favicon.ico")
		if err != nil {
			return NotFound, nil
		}
		return Found(data, contentTypeIcon), nil
	})
}

// PageName maps a page path to its Markdown file: "/" is index.md, "/a/b"
// is a/b.md and "/a/" is a/index.md
func PageName(urlPath string) string {
	name := strings.TrimPrefix(urlPath, "/")
	if name == "" || strings.HasSuffix(name, "/") {
		return name + "index.md"
	}
	return name + ".md"
}

func pageHandler(content Content, pages PageRenderer) Handler {
	return HandlerFunc(func(urlPath string) (Result, error) {
		name := PageName(urlPath)
		src, err := content.ReadText(name)
		if err != nil {
			return NotFound, nil
		}

		doc, err := pages.Render(name, src)
		if err != nil {
			return NotFound, fmt.Errorf("page %s: %w", name, err)
		}
		return Found(doc, contentTypeHTML), nil
	})
}

func assetHandler(content Content, styles StyleCompiler) Handler {
	return HandlerFunc(func(urlPath string) (Result, error) {
		name := strings.TrimPrefix(urlPath, "/")
		if path.Ext(name) != ".scss" {
			data, err := content.ReadFile(name)
			if err != nil {
				return NotFound, nil
			}
			return Found(data, MimeType(name)), nil
		}

		src, err := content.ReadText(name)
		if err != nil {
			return NotFound, nil
		}
		css, err := styles.Compile(string(src))
		if err != nil {
			return NotFound, fmt.Errorf("stylesheet %s: %w", name, err)
		}
		return Found([]byte(css), contentTypeCSS), nil
	})
}
