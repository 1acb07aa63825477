// Package module mounts self-contained HTTP modules under single-level path
// prefixes. Each module owns its routes and middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/captioner/pkg/middleware"
	"github.com/JaimeStill/captioner/pkg/routes"
)

// Module is an HTTP handler that strips its prefix and delegates to an inner router
// with its own middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	patterns   []string
	middleware middleware.System
}

// New creates a Module with the given single-level prefix (e.g. "/api")
// serving the route groups on a fresh ServeMux.
// Panics if the prefix is empty, missing a leading slash, or multi-level.
func New(prefix string, groups ...routes.Group) *Module {
	mux := http.NewServeMux()
	routes.Register(mux, groups...)

	m := NewWithHandler(prefix, mux)
	m.patterns = routes.Patterns(groups...)
	return m
}

// NewWithHandler creates a Module that serves an existing handler.
// Panics under the same prefix rules as New.
func NewWithHandler(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped with the module's middleware stack.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Routes returns the full patterns served by the module, prefix included.
// It is empty for modules built with NewWithHandler.
func (m *Module) Routes() []string {
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		method, path, _ := strings.Cut(p, " ")
		out[i] = method + " " + m.prefix + path
	}
	return out
}

// Serve strips the module prefix from the request path and dispatches to the inner router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	r := req.Clone(req.Context())
	r.URL.Path = innerPath(req.URL.Path, m.prefix)
	r.URL.RawPath = ""
	m.Handler().ServeHTTP(w, r)
}

// Use adds middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

func innerPath(fullPath, prefix string) string {
	if path := strings.TrimPrefix(fullPath, prefix); path != "" {
		return path
	}
	return "/"
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("module prefix cannot be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	}
	if strings.Count(prefix, "/") != 1 {
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
