package server

import (
	"net/http"
	"strings"
)

// readOnlyAllowed lists the write endpoints that stay open in read-only mode:
// signing in and out, the generation tools, which store nothing, and the MCP
// endpoint that fronts them.
var readOnlyAllowed = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/guest",
	"/api/v1/auth/logout",
	"/api/v1/mcp",
}

const readOnlyToolsPrefix = "/api/v1/tools/"

// ReadOnlyMiddleware rejects requests that would change stored data.
// GET, HEAD, and OPTIONS always pass, as do the session and tool endpoints;
// everything else gets 405 Method Not Allowed.
func ReadOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		case http.MethodPost:
			if readOnlyPathAllowed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
		}
		MethodNotAllowed(w, "server is in read-only mode", r.URL.Path)
	})
}

func readOnlyPathAllowed(path string) bool {
	if strings.HasPrefix(path, readOnlyToolsPrefix) {
		return true
	}
	for _, p := range readOnlyAllowed {
		if path == p {
			return true
		}
	}
	return false
}
