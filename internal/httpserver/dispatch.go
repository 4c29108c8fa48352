package httpserver

import (
	"fmt"
	"mime"
	"net/http"
	"path"

	"github.com/rs/zerolog"

	"webserver/internal/wire"
)

// NotFoundBody is sent when the configured 404 page cannot be used
const NotFoundBody = "ERROR 404: Not found."

// DefaultContentType is used for extensions without a known MIME type
const DefaultContentType = "*/*"

func init() {
	// The system tables disagree on these
	mime.AddExtensionType(".ico", contentTypeIcon)
	mime.AddExtensionType(".md", "text/markdown; charset=utf-8")
	mime.AddExtensionType(".scss", "text/x-scss; charset=utf-8")
}

// MimeType guesses the content type of name from its extension
func MimeType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return DefaultContentType
}

// Dispatcher turns requests into responses
type Dispatcher struct {
	mux     *Mux
	content Content
	pages   PageRenderer
	page404 string
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher. page404 is the content name of the
// not found page; an empty name always yields the literal fallback.
func NewDispatcher(mux *Mux, content Content, pages PageRenderer, page404 string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		mux:     mux,
		content: content,
		pages:   pages,
		page404: page404,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch routes req. Missing resources and unmatched paths produce the
// 404 page. An error means the handler failed and no response should be
// sent.
func (d *Dispatcher) Dispatch(req *wire.Request) (*wire.Response, error) {
	route, ok := d.mux.Match(req.Method, req.Path)
	if !ok {
		d.log.Debug().Str("method", string(req.Method)).Str("path", req.Path).Msg("no route")
		return d.NotFound(), nil
	}

	res, err := route.Handler.Handle(req.Path)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", route.Name, err)
	}
	if !res.Found {
		d.log.Debug().Str("route", route.Name).Str("path", req.Path).Msg("resource not found")
		return d.NotFound(), nil
	}

	status := res.Status
	if status == 0 {
		status = http.StatusOK
	} else if status < 100 || status > 599 {
		d.log.Warn().Str("route", route.Name).Int("status", status).Msg("handler returned an invalid status")
		status = http.StatusOK
	}
	return wire.NewResponse(status, res.ContentType, res.Body), nil
}

// NotFound builds the 404 response: the configured page if it can be read
// (rendered when it is Markdown), the literal fallback otherwise
func (d *Dispatcher) NotFound() *wire.Response {
	if d.page404 == "" {
		return fallback404()
	}

	data, err := d.content.ReadText(d.page404)
	if err != nil {
		d.log.Debug().Err(err).Str("page", d.page404).Msg("404 page unavailable")
		return fallback404()
	}

	contentType := MimeType(d.page404)
	if path.Ext(d.page404) == ".md" {
		data, err = d.pages.Render(d.page404, data)
		if err != nil {
			d.log.Warn().Err(err).Str("page", d.page404).Msg("unable to render 404 page")
			return fallback404()
		}
		contentType = contentTypeHTML
	}
	return wire.NewResponse(http.StatusNotFound, contentType, data)
}

func fallback404() *wire.Response {
	return wire.NewResponse(http.StatusNotFound, "text/plain", []byte(NotFoundBody))
}
