package routes

import (
	"net/http"

	"github.com/JaimeStill/captioner/pkg/middleware"
)

// Group organizes routes under a common prefix. Children inherit the
// prefix of their parent.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk(groups, func(pattern string, route Route) {
		label := route.label(pattern)
		handler := route.Handler
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			middleware.Annotate(r.Context(), "route", label)
			handler(w, r)
		})
	})
}

// Patterns returns the mux pattern of every route in groups in
// registration order.
func Patterns(groups ...Group) []string {
	var patterns []string
	walk(groups, func(pattern string, _ Route) {
		patterns = append(patterns, pattern)
	})
	return patterns
}

func walk(groups []Group, visit func(pattern string, route Route)) {
	for _, group := range groups {
		walkGroup("", group, visit)
	}
}

func walkGroup(parentPrefix string, group Group, visit func(string, Route)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		visit(route.Method+" "+fullPrefix+route.Pattern, route)
	}
	for _, child := range group.Children {
		walkGroup(fullPrefix, child, visit)
	}
}
