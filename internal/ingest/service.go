package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlasfit/gym-crm-platform/internal/contacts"
	"github.com/atlasfit/gym-crm-platform/internal/fieldmap"
	"github.com/atlasfit/gym-crm-platform/internal/forms"
	"github.com/atlasfit/gym-crm-platform/internal/observability/metrics"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// Provider tag recorded against deduplicated deliveries.
const providerFacebook = "facebook"

// Notifier alerts an operator about a freshly created lead.
type Notifier interface {
	NotifyNewLead(ctx context.Context, contact *contacts.Contact, formID string, receivedAt time.Time) error
}

// Service turns queued lead jobs into normalized contacts and lead records.
type Service struct {
	forms    *forms.Service
	contacts contacts.Repository
	leads    LeadStore
	dedup    DedupStore
	notifier Notifier
	metrics  *metrics.IngestMetrics
	logger   *logging.Logger
}

// NewService creates the ingestion service.
func NewService(
	formsSvc *forms.Service,
	contactsRepo contacts.Repository,
	leadStore LeadStore,
	dedup DedupStore,
	notifier Notifier,
	m *metrics.IngestMetrics,
	logger *logging.Logger,
) *Service {
	if formsSvc == nil {
		panic("ingest: forms service required")
	}
	if contactsRepo == nil {
		panic("ingest: contacts repository required")
	}
	if leadStore == nil {
		panic("ingest: lead store required")
	}
	if dedup == nil {
		panic("ingest: dedup store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		forms:    formsSvc,
		contacts: contactsRepo,
		leads:    leadStore,
		dedup:    dedup,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// Process handles one lead job. A nil return means the job is finished and
// the queue message can be deleted; errors mean the delivery should be
// retried.
func (s *Service) Process(ctx context.Context, job Job) error {
	start := time.Now()

	if job.LeadgenID != "" {
		seen, err := s.dedup.AlreadyProcessed(ctx, providerFacebook, job.LeadgenID)
		if err != nil {
			return fmt.Errorf("ingest: dedup check: %w", err)
		}
		if seen {
			s.logger.Info("duplicate lead delivery dropped",
				"org_id", job.OrgID, "form_id", job.FormID, "leadgen_id", job.LeadgenID)
			s.metrics.ObserveLead("deduped")
			return nil
		}
	}

	stored, err := s.forms.GetOrInit(ctx, job.OrgID, job.FormID)
	if err != nil {
		return fmt.Errorf("ingest: load mappings: %w", err)
	}

	payload, err := fieldmap.DecodePayload(job.FieldData)
	if err != nil {
		// Malformed payloads never become processable; drop without retry.
		s.logger.Error("undecodable lead payload dropped",
			"error", err, "org_id", job.OrgID, "form_id", job.FormID, "leadgen_id", job.LeadgenID)
		s.metrics.ObserveLead("invalid")
		return nil
	}

	record, fallbacks := fieldmap.Apply(payload, stored.Mappings)
	for _, field := range fallbacks {
		s.logger.Warn("transformation fell back to raw value",
			"crm_field", field, "org_id", job.OrgID, "form_id", job.FormID)
		s.metrics.ObserveTransformFallback(field)
	}

	s.injectCustomFields(record, stored)

	var contact *contacts.Contact
	if stored.AutoCreateContact {
		contact = s.resolveContact(ctx, job, record)
	}

	lead := &Lead{
		OrgID:     job.OrgID,
		FormID:    job.FormID,
		LeadgenID: job.LeadgenID,
		Record:    record,
		Source:    recordString(record, "lead_source"),
	}
	if contact != nil {
		lead.ContactID = contact.ID
	}
	if _, err := s.leads.Create(ctx, lead); err != nil {
		return fmt.Errorf("ingest: store lead: %w", err)
	}

	if job.LeadgenID != "" {
		if _, err := s.dedup.MarkProcessed(ctx, providerFacebook, job.LeadgenID); err != nil {
			s.logger.Error("failed to mark lead processed",
				"error", err, "leadgen_id", job.LeadgenID)
		}
	}

	if contact != nil && s.notifier != nil {
		if err := s.notifier.NotifyNewLead(ctx, contact, job.FormID, job.ReceivedAt); err != nil {
			s.logger.Warn("new lead notification failed", "error", err, "org_id", job.OrgID)
		}
	}

	s.logger.Info("lead processed",
		"org_id", job.OrgID, "form_id", job.FormID, "leadgen_id", job.LeadgenID,
		"fields", len(record), "fallbacks", len(fallbacks))
	s.metrics.ObserveLead("processed")
	s.metrics.ObserveIngestLatency("processed", time.Since(start).Seconds())
	return nil
}

// injectCustomFields adds configured per-form values to the record. Static
// entries always apply; non-static entries only fill gaps the payload left.
func (s *Service) injectCustomFields(record map[string]any, stored *fieldmap.StoredMappings) {
	for _, cm := range stored.CustomMappings {
		if cm.FieldName == "" || cm.FieldValue == nil {
			continue
		}
		if cm.IsStatic {
			record[cm.FieldName] = cm.FieldValue
			continue
		}
		if _, ok := record[cm.FieldName]; !ok {
			record[cm.FieldName] = cm.FieldValue
		}
	}

	if recordString(record, "lead_source") == "" {
		source := stored.DefaultLeadSource
		if source == "" {
			source = "Facebook"
		}
		record["lead_source"] = source
	}
}

func (s *Service) resolveContact(ctx context.Context, job Job, record map[string]any) *contacts.Contact {
	candidate := contacts.FromRecord(job.OrgID, record)

	if candidate.Email != "" {
		existing, err := s.contacts.FindByEmail(ctx, job.OrgID, candidate.Email)
		if err == nil {
			s.logger.Info("lead matched existing contact",
				"org_id", job.OrgID, "contact_id", existing.ID, "form_id", job.FormID)
			return existing
		}
		if !errors.Is(err, contacts.ErrNotFound) {
			s.logger.Warn("contact lookup failed", "error", err, "org_id", job.OrgID)
		}
	}

	created, err := s.contacts.Create(ctx, candidate)
	if err != nil {
		s.logger.Warn("contact auto-create skipped",
			"error", err, "org_id", job.OrgID, "form_id", job.FormID)
		s.metrics.ObserveLead("no_contact")
		return nil
	}
	return created
}

func recordString(record map[string]any, key string) string {
	if v, ok := record[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}
