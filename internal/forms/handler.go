package forms

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
	"github.com/atlasfit/gym-crm-platform/internal/tenancy"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// Handler handles HTTP requests for per-form mapping configuration.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a forms handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// MappingsResponse pairs a configuration with its validation state.
type MappingsResponse struct {
	Mappings   *fieldmap.StoredMappings   `json:"mappings"`
	Validation *fieldmap.ValidationResult `json:"validation,omitempty"`
}

// DetectRequest carries the external form definition to classify.
type DetectRequest struct {
	Fields []fieldmap.FormField `json:"fields"`
}

// GetMappings handles GET /forms/{formID}/mappings.
func (h *Handler) GetMappings(w http.ResponseWriter, r *http.Request) {
	orgID, formID, ok := h.scope(w, r)
	if !ok {
		return
	}

	stored, err := h.service.GetOrInit(r.Context(), orgID, formID)
	if err != nil {
		h.logger.Error("failed to load mappings", "error", err, "org_id", orgID, "form_id", formID)
		http.Error(w, "failed to load mappings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MappingsResponse{Mappings: stored})
}

// DetectMappings handles POST /forms/{formID}/mappings/detect. Detection
// results are merged under saved mappings and persisted.
func (h *Handler) DetectMappings(w http.ResponseWriter, r *http.Request) {
	orgID, formID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	stored, result, err := h.service.AutoDetect(r.Context(), orgID, formID, req.Fields)
	if err != nil {
		h.logger.Error("auto-detection failed", "error", err, "org_id", orgID, "form_id", formID)
		http.Error(w, "auto-detection failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MappingsResponse{Mappings: stored, Validation: &result})
}

// SuggestMappings handles POST /forms/{formID}/mappings/suggest. Nothing is
// persisted; the response proposes mappings for not-yet-mapped fields.
func (h *Handler) SuggestMappings(w http.ResponseWriter, r *http.Request) {
	orgID, formID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	suggestions, err := h.service.Suggest(r.Context(), orgID, formID, req.Fields)
	if err != nil {
		h.logger.Error("suggestion failed", "error", err, "org_id", orgID, "form_id", formID)
		http.Error(w, "suggestion failed", http.StatusInternalServerError)
		return
	}
	if suggestions == nil {
		suggestions = []fieldmap.Mapping{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// SaveMappings handles PUT /forms/{formID}/mappings. Hard validation errors
// return 422 without saving; the advisory warning saves and is echoed back.
func (h *Handler) SaveMappings(w http.ResponseWriter, r *http.Request) {
	orgID, formID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var stored fieldmap.StoredMappings
	if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Save(r.Context(), orgID, formID, &stored)
	if err != nil {
		if errors.Is(err, ErrInvalidMappings) {
			writeJSON(w, http.StatusUnprocessableEntity, MappingsResponse{Validation: &result})
			return
		}
		h.logger.Error("failed to save mappings", "error", err, "org_id", orgID, "form_id", formID)
		http.Error(w, "failed to save mappings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MappingsResponse{Mappings: &stored, Validation: &result})
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (orgID, formID string, ok bool) {
	orgID, found := tenancy.OrgIDFromContext(r.Context())
	if !found {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return "", "", false
	}
	formID = chi.URLParam(r, "formID")
	if formID == "" {
		http.Error(w, "missing form id", http.StatusBadRequest)
		return "", "", false
	}
	return orgID, formID, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
