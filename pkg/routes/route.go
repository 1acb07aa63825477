// Package routes declares HTTP routes as data and registers them on a
// ServeMux. Each registered handler records its route on the access log.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler. Name identifies the
// route in access logs; the full pattern is used when it is empty.
type Route struct {
	Method  string
	Pattern string
	Name    string
	Handler http.HandlerFunc
}

func (r Route) label(pattern string) string {
	if r.Name != "" {
		return r.Name
	}
	return pattern
}
