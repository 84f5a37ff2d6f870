package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
	"github.com/atlasfit/gym-crm-platform/internal/tenancy"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

func newHandler() (*Handler, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, logging.Default())
	return NewHandler(svc, logging.Default()), repo
}

func formRequest(method, target, formID string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(tenancy.WithOrgID(req.Context(), "org-1"))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("formID", formID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetMappings_InitialisesDefaults(t *testing.T) {
	h, _ := newHandler()

	req := formRequest(http.MethodGet, "/forms/form-1/mappings", "form-1", nil)
	rec := httptest.NewRecorder()
	h.GetMappings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp MappingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mappings == nil || len(resp.Mappings.CustomMappings) != 2 {
		t.Fatalf("expected default configuration, got %+v", resp.Mappings)
	}
}

func TestGetMappings_MissingOrg(t *testing.T) {
	h, _ := newHandler()

	req := httptest.NewRequest(http.MethodGet, "/forms/form-1/mappings", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("formID", "form-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.GetMappings(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDetectMappings_ReturnsMergedResult(t *testing.T) {
	h, _ := newHandler()

	body, _ := json.Marshal(DetectRequest{Fields: []fieldmap.FormField{
		{ID: "f1", Name: "q_email", Type: "EMAIL"},
		{ID: "f2", Name: "q_phone", Type: "PHONE_NUMBER"},
	}})
	req := formRequest(http.MethodPost, "/forms/form-1/mappings/detect", "form-1", body)
	rec := httptest.NewRecorder()
	h.DetectMappings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp MappingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Mappings.Mappings) != 2 {
		t.Fatalf("expected 2 detected mappings, got %+v", resp.Mappings.Mappings)
	}
	if resp.Validation == nil {
		t.Fatal("expected validation result")
	}
}

func TestDetectMappings_BadBody(t *testing.T) {
	h, _ := newHandler()

	req := formRequest(http.MethodPost, "/forms/form-1/mappings/detect", "form-1", []byte("{not json"))
	rec := httptest.NewRecorder()
	h.DetectMappings(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSuggestMappings_EmptyIsNonNil(t *testing.T) {
	h, repo := newHandler()

	stored := fieldmap.DefaultStoredMappings()
	stored.Mappings = []fieldmap.Mapping{{ID: "f1", FieldName: "q_email", CRMField: fieldmap.FieldEmail, CRMFieldType: fieldmap.CRMFieldStandard}}
	if err := repo.Save(context.Background(), "org-1", "form-1", stored); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body, _ := json.Marshal(DetectRequest{Fields: []fieldmap.FormField{
		{ID: "f1", Name: "q_email", Type: "EMAIL"},
	}})
	req := formRequest(http.MethodPost, "/forms/form-1/mappings/suggest", "form-1", body)
	rec := httptest.NewRecorder()
	h.SuggestMappings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Suggestions []fieldmap.Mapping `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %+v", resp.Suggestions)
	}
}

func TestSaveMappings_InvalidReturns422(t *testing.T) {
	h, _ := newHandler()

	stored := fieldmap.DefaultStoredMappings()
	stored.Mappings = []fieldmap.Mapping{
		{ID: "a", FieldName: "q_a", CRMField: fieldmap.FieldEmail, CRMFieldType: fieldmap.CRMFieldStandard},
		{ID: "b", FieldName: "q_b", CRMField: fieldmap.FieldEmail, CRMFieldType: fieldmap.CRMFieldStandard},
	}
	body, _ := json.Marshal(stored)

	req := formRequest(http.MethodPut, "/forms/form-1/mappings", "form-1", body)
	rec := httptest.NewRecorder()
	h.SaveMappings(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp MappingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Validation == nil || resp.Validation.Valid {
		t.Fatalf("expected invalid validation result, got %+v", resp.Validation)
	}
}

func TestSaveMappings_ValidPersists(t *testing.T) {
	h, repo := newHandler()

	stored := fieldmap.DefaultStoredMappings()
	stored.Mappings = []fieldmap.Mapping{
		{ID: "a", FieldName: "q_email", CRMField: fieldmap.FieldEmail, CRMFieldType: fieldmap.CRMFieldStandard},
	}
	body, _ := json.Marshal(stored)

	req := formRequest(http.MethodPut, "/forms/form-1/mappings", "form-1", body)
	rec := httptest.NewRecorder()
	h.SaveMappings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := repo.Load(context.Background(), "org-1", "form-1"); err != nil {
		t.Fatalf("expected persisted configuration: %v", err)
	}
}
