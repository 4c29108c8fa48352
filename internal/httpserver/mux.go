package httpserver

import (
	"fmt"
	"net/http"
	"regexp"

	"webserver/internal/wire"
)

// Result is what a Handler produces for a matched path
type Result struct {
	Found       bool
	Body        []byte
	ContentType string
	Status      int
}

// Found returns a 200 result
func Found(body []byte, contentType string) Result {
	return Result{Found: true, Body: body, ContentType: contentType, Status: http.StatusOK}
}

// NotFound is returned by handlers whose resource is missing or unusable.
// The dispatcher answers it with the 404 fallback.
var NotFound = Result{}

// Handler serves a matched path
type Handler interface {
	Handle(path string) (Result, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(path string) (Result, error)

// Handle calls f(path)
func (f HandlerFunc) Handle(path string) (Result, error) {
	return f(path)
}

// Route binds a method and a path pattern to a handler. The pattern must
// match the whole path.
type Route struct {
	Name    string
	Method  wire.Method
	Pattern *regexp.Regexp
	Handler Handler
}

// NewRoute compiles pattern anchored at both ends
func NewRoute(name string, method wire.Method, pattern string, h Handler) (Route, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return Route{}, fmt.Errorf("route %s: %w", name, err)
	}
	return Route{Name: name, Method: method, Pattern: re, Handler: h}, nil
}

// MustRoute is like NewRoute but panics if the pattern does not compile
func MustRoute(name string, method wire.Method, pattern string, h Handler) Route {
	r, err := NewRoute(name, method, pattern, h)
	if err != nil {
		panic(err)
	}
	return r
}

// Matches reports whether the route accepts method and path
func (r Route) Matches(method wire.Method, path string) bool {
	return r.Method == method && r.Pattern.MatchString(path)
}

// Mux is an ordered route table. It is built once and only read
// afterwards, so workers share it without locking.
type Mux struct {
	routes []Route
}

// NewMux creates a Mux trying routes in the given order
func NewMux(routes ...Route) *Mux {
	return &Mux{routes: append([]Route(nil), routes...)}
}

// Match returns the first route accepting method and path
func (m *Mux) Match(method wire.Method, path string) (Route, bool) {
	for _, r := range m.routes {
		if r.Matches(method, path) {
			return r, true
		}
	}
	return Route{}, false
}

// Len returns the number of routes
func (m *Mux) Len() int {
	return len(m.routes)
}
