package middleware

import (
	"net/http"
	"strings"
)

// The mapping dashboard sends org-scoped requests with these headers; the
// method list covers exactly what the API serves.
const (
	corsAllowHeaders = "Authorization, Content-Type, X-Org-Id, X-Request-Id"
	corsAllowMethods = "GET, POST, PUT, OPTIONS"
	corsMaxAge       = "300"
)

// CORS restricts browser access to the configured dashboard origins. An
// entry of "*" opens the API to any origin, for local development only.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch o {
		case "":
		case "*":
			allowAll = true
		default:
			allowed[strings.TrimSuffix(o, "/")] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			_, listed := allowed[strings.ToLower(origin)]
			if allowAll || listed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Max-Age", corsMaxAge)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
