package security

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"salesdash/internal/log"
)

// CORS answers cross-origin requests for an allow-list of origins. An entry
// of "*" admits any origin.
type CORS struct {
	origins []string
	any     bool
}

const (
	corsMethods = "GET, POST, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Request-ID"
)

func NewCORS(allowed []string) *CORS {
	c := &CORS{}
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			c.any = true
			continue
		}
		c.origins = append(c.origins, o)
	}
	return c
}

// Allowed reports whether origin may read responses.
func (c *CORS) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	return c.any || slices.Contains(c.origins, origin)
}

// Middleware sets the CORS headers and short-circuits preflight requests
// with 204. A request carrying an Origin outside the allow-list is answered
// by onReject and never reaches next; requests without an Origin pass.
func (c *CORS) Middleware(onReject func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if onReject == nil {
		onReject = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin != "" {
				if !c.Allowed(strings.TrimRight(origin, "/")) {
					slog.WarnContext(r.Context(), "Cross-origin request rejected",
						log.FieldComponent, log.ComponentSecurity,
						"origin", origin,
						"method", r.Method,
						"path", r.URL.Path)
					onReject(w, r)
					return
				}
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Expose-Headers", "X-Request-ID")
				h.Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
