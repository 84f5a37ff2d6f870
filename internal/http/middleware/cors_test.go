package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/forms/form-1/mappings", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS_DashboardOrigin(t *testing.T) {
	mw := CORS([]string{"https://app.atlasfit.io"})
	rec := httptest.NewRecorder()
	next := 0

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next++
	})).ServeHTTP(rec, corsRequest(http.MethodGet, "https://app.atlasfit.io"))

	if next != 1 {
		t.Fatalf("expected request to reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.atlasfit.io" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
	if headers := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(headers, "X-Org-Id") {
		t.Fatalf("expected X-Org-Id in allow headers, got %q", headers)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); strings.Contains(methods, "DELETE") {
		t.Fatalf("DELETE is not served, got %q", methods)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	mw := CORS([]string{"https://app.atlasfit.io"})
	rec := httptest.NewRecorder()

	req := corsRequest(http.MethodOptions, "https://app.atlasfit.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("preflight must not reach the handler")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestCORS_UnlistedOriginGetsNoGrant(t *testing.T) {
	mw := CORS([]string{"https://app.atlasfit.io"})
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, corsRequest(http.MethodGet, "https://evil.example"))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no grant, got %q", got)
	}
	// Caches must still learn the response varies by origin.
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCORS_WildcardForLocalDev(t *testing.T) {
	mw := CORS([]string{"*"})
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, corsRequest(http.MethodGet, "http://localhost:3000"))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected wildcard grant, got %q", got)
	}
}

func TestCORS_NonBrowserRequestUntouched(t *testing.T) {
	mw := CORS([]string{"https://app.atlasfit.io"})
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, corsRequest(http.MethodGet, ""))

	if len(rec.Header().Values("Vary")) != 0 {
		t.Fatalf("expected no CORS headers without an Origin, got %v", rec.Header())
	}
}
