package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// Service owns the mapping-configuration lifecycle: defaults on first sight,
// auto-detection merged under saved mappings, validation before persistence.
type Service struct {
	repo          Repository
	detector      fieldmap.Detector
	defaultSource string
	logger        *logging.Logger
}

// ServiceOption configures optional service behavior.
type ServiceOption func(*Service)

// WithPhoneRegion sets the region attached to phone transformations the
// detector produces. Empty keeps the GB default.
func WithPhoneRegion(region string) ServiceOption {
	return func(s *Service) {
		s.detector.PhoneRegion = region
	}
}

// WithDefaultLeadSource sets the lead source seeded into a form's default
// configuration (both the static custom mapping and the fallback source).
// Empty keeps the Facebook default.
func WithDefaultLeadSource(source string) ServiceOption {
	return func(s *Service) {
		s.defaultSource = source
	}
}

// NewService creates a mapping configuration service.
func NewService(repo Repository, logger *logging.Logger, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("forms: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrInit returns the stored configuration for the form, creating and
// persisting the default configuration the first time the form is seen.
func (s *Service) GetOrInit(ctx context.Context, orgID, formID string) (*fieldmap.StoredMappings, error) {
	stored, err := s.repo.Load(ctx, orgID, formID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	stored = fieldmap.DefaultStoredMappings()
	if s.defaultSource != "" {
		stored.DefaultLeadSource = s.defaultSource
		for i, cm := range stored.CustomMappings {
			if cm.IsStatic && cm.FieldName == "lead_source" {
				stored.CustomMappings[i].FieldValue = s.defaultSource
			}
		}
	}
	if err := s.repo.Save(ctx, orgID, formID, stored); err != nil {
		return nil, fmt.Errorf("forms: init defaults: %w", err)
	}
	s.logger.Info("initialized default field mappings", "org_id", orgID, "form_id", formID)
	return stored, nil
}

// AutoDetect classifies the form's fields, merges the results under any saved
// mappings (saved always wins), validates, and persists the merged set.
func (s *Service) AutoDetect(ctx context.Context, orgID, formID string, fields []fieldmap.FormField) (*fieldmap.StoredMappings, fieldmap.ValidationResult, error) {
	stored, err := s.GetOrInit(ctx, orgID, formID)
	if err != nil {
		return nil, fieldmap.ValidationResult{}, err
	}

	detected := s.detector.DetectAll(fields)
	stored.Mappings = fieldmap.Merge(detected, stored.Mappings)
	stored.UpdatedAt = time.Now().UTC()

	result := fieldmap.Validate(stored.Mappings)
	if err := s.repo.Save(ctx, orgID, formID, stored); err != nil {
		return nil, result, err
	}

	s.logger.Info("auto-detection merged",
		"org_id", orgID,
		"form_id", formID,
		"detected", len(detected),
		"total", len(stored.Mappings),
	)
	return stored, result, nil
}

// Suggest proposes mappings for form fields not yet covered by the saved set.
// Nothing is persisted.
func (s *Service) Suggest(ctx context.Context, orgID, formID string, fields []fieldmap.FormField) ([]fieldmap.Mapping, error) {
	stored, err := s.repo.Load(ctx, orgID, formID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.detector.Suggest(fields, nil), nil
		}
		return nil, err
	}
	return s.detector.Suggest(fields, stored.Mappings), nil
}

// Save validates and persists a human-edited configuration. Hard validation
// errors block the save and return ErrInvalidMappings; the advisory
// "no contact field" warning is saved through with the result so the caller
// can surface it.
func (s *Service) Save(ctx context.Context, orgID, formID string, stored *fieldmap.StoredMappings) (fieldmap.ValidationResult, error) {
	result := fieldmap.Validate(stored.Mappings)
	if !result.Valid && !advisoryOnly(result) {
		return result, ErrInvalidMappings
	}

	if stored.Version == "" {
		stored.Version = fieldmap.Version
	}
	stored.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, orgID, formID, stored); err != nil {
		return result, err
	}
	if !result.Valid {
		s.logger.Warn("mappings saved with warnings",
			"org_id", orgID,
			"form_id", formID,
			"warnings", strings.Join(result.Errors, "; "),
		)
	}
	return result, nil
}

// advisoryOnly reports whether every accumulated error is a soft warning.
func advisoryOnly(result fieldmap.ValidationResult) bool {
	for _, e := range result.Errors {
		if !strings.HasPrefix(e, "Warning:") {
			return false
		}
	}
	return true
}
