package router

import (
	"context"
	"net/http"
	"strings"
)

// Middleware wraps a handler with cross-cutting behaviour.
type Middleware func(next http.Handler) http.Handler

// Router is a thin layer over http.ServeMux that applies a middleware chain
// and supports prefixed sub-routers with their own middleware.
type Router struct {
	prefix     string
	mux        *http.ServeMux
	middleware []Middleware
}

func New() *Router {
	return &Router{
		prefix: "",
		mux:    http.NewServeMux(),
	}
}

// Use appends middleware. The first registered middleware is the outermost.
func (rt *Router) Use(mw ...Middleware) {
	rt.middleware = append(rt.middleware, mw...)
}

// Handle registers handler for pattern. Patterns may carry a method
// ("POST /words"); a missing leading slash on the path is added.
func (rt *Router) Handle(pattern string, handler http.Handler) {
	pattern = normalizePattern(pattern)
	rt.mux.Handle(pattern, recordMatch(rt.qualify(pattern), handler))
}

func (rt *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	rt.Handle(pattern, http.HandlerFunc(handler))
}

// SubRouter mounts a new router under prefix. Requests reaching it have
// already passed through the parent's middleware, so the sub-router only
// runs its own.
func (rt *Router) SubRouter(prefix string) *Router {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		panic("empty subrouter prefix")
	}

	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	s := &Router{
		prefix: rt.prefix + prefix,
		mux:    http.NewServeMux(),
	}

	rt.mux.Handle(prefix+"/", http.StripPrefix(prefix, s))
	return s
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = rt.mux
	for i := len(rt.middleware) - 1; i >= 0; i-- {
		h = rt.middleware[i](h)
	}

	h.ServeHTTP(w, r)
}

func normalizePattern(pattern string) string {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		path, method = pattern, ""
	}

	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if method == "" {
		return path
	}

	return method + " " + path
}

// qualify prepends the router's mount point to the path of pattern.
func (rt *Router) qualify(pattern string) string {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		return rt.prefix + pattern
	}

	return method + " " + rt.prefix + path
}

type matchKey struct{}

// Match holds the full pattern of the handler that served a request,
// including the prefixes of every sub-router on the way.
type Match struct {
	pattern string
}

func (m *Match) Pattern() string {
	return m.pattern
}

// TrackMatch attaches a Match to r. A request that already carries one
// keeps it, so nested middleware share the same Match.
func TrackMatch(r *http.Request) (*http.Request, *Match) {
	if m, ok := r.Context().Value(matchKey{}).(*Match); ok {
		return r, m
	}

	m := &Match{}
	return r.WithContext(context.WithValue(r.Context(), matchKey{}, m)), m
}

func recordMatch(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m, ok := r.Context().Value(matchKey{}).(*Match); ok {
			m.pattern = pattern
		}
		next.ServeHTTP(w, r)
	})
}
