package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlasfit/gym-crm-platform/internal/contacts"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// Service sends operator notifications when new leads arrive.
type Service struct {
	email     EmailSender
	recipient string
	logger    *logging.Logger
}

// NewService creates a notification service. With no recipient configured,
// notifications are skipped.
func NewService(email EmailSender, recipient string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:     email,
		recipient: recipient,
		logger:    logger,
	}
}

// NotifyNewLead emails the operator about a freshly ingested lead.
func (s *Service) NotifyNewLead(ctx context.Context, contact *contacts.Contact, formID string, receivedAt time.Time) error {
	if s.email == nil || s.recipient == "" {
		s.logger.Debug("notify: email not configured, skipping new lead notification")
		return nil
	}
	if contact == nil {
		return nil
	}

	name := displayName(contact)
	subject := fmt.Sprintf("New lead: %s", name)

	var b strings.Builder
	fmt.Fprintf(&b, "%s just submitted a lead form.\n\n", name)
	fmt.Fprintf(&b, "Form: %s\n", formID)
	if contact.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", contact.Email)
	}
	if contact.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", contact.Phone)
	}
	if contact.City != "" {
		fmt.Fprintf(&b, "City: %s\n", contact.City)
	}
	if contact.LeadSource != "" {
		fmt.Fprintf(&b, "Source: %s\n", contact.LeadSource)
	}
	for key, value := range contact.Attributes {
		fmt.Fprintf(&b, "%s: %v\n", key, value)
	}
	fmt.Fprintf(&b, "Received: %s\n", receivedAt.Format("January 2, 2006 at 3:04 PM"))

	msg := EmailMessage{
		To:      s.recipient,
		Subject: subject,
		Body:    b.String(),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: new lead email: %w", err)
	}
	return nil
}

func displayName(contact *contacts.Contact) string {
	name := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	if name != "" {
		return name
	}
	if contact.Email != "" {
		return contact.Email
	}
	if contact.Phone != "" {
		return contact.Phone
	}
	return "A new lead"
}
