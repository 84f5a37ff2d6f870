package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atlasfit/gym-crm-platform/internal/tenancy"
)

func TestRequireOrgIDPassesThrough(t *testing.T) {
	var gotOrg string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrg, _ = tenancy.OrgIDFromContext(r.Context())
	})

	handler := requireOrgID(next)
	req := httptest.NewRequest(http.MethodGet, "/forms/f-1/mappings", nil)
	req.Header.Set(orgHeader, "org-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotOrg != "org-42" {
		t.Fatalf("expected org-42 in context, got %q", gotOrg)
	}
}

func TestRequireOrgIDMissingHeader(t *testing.T) {
	handler := requireOrgID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/forms/f-1/mappings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
