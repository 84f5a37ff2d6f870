package contacts

import (
	"fmt"
	"strings"
	"time"
)

// Contact is a CRM contact. Standard fields live on columns; anything a
// form maps to a custom field lands in Attributes.
type Contact struct {
	ID         string         `json:"id"`
	OrgID      string         `json:"org_id"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	PostalCode string         `json:"postal_code"`
	Country    string         `json:"country"`
	Company    string         `json:"company"`
	Notes      string         `json:"notes"`
	LeadSource string         `json:"lead_source"`
	Status     string         `json:"status"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Validate checks that the contact can be stored.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.OrgID) == "" {
		return ErrMissingOrgID
	}
	if c.Email == "" && c.Phone == "" && c.FirstName == "" && c.LastName == "" {
		return ErrMissingIdentity
	}
	return nil
}

// FromRecord builds a contact from a normalized lead record. Known standard
// keys populate columns; everything else goes into Attributes unchanged.
func FromRecord(orgID string, record map[string]any) *Contact {
	c := &Contact{OrgID: orgID}
	for key, value := range record {
		switch key {
		case "first_name":
			c.FirstName = toString(value)
		case "last_name":
			c.LastName = toString(value)
		case "full_name":
			// Derived from first/last; the split fields win.
		case "email":
			c.Email = toString(value)
		case "phone":
			c.Phone = toString(value)
		case "address":
			c.Address = toString(value)
		case "city":
			c.City = toString(value)
		case "postal_code":
			c.PostalCode = toString(value)
		case "country":
			c.Country = toString(value)
		case "company":
			c.Company = toString(value)
		case "notes":
			c.Notes = toString(value)
		case "lead_source":
			c.LeadSource = toString(value)
		case "status":
			c.Status = toString(value)
		default:
			if c.Attributes == nil {
				c.Attributes = make(map[string]any)
			}
			c.Attributes[key] = value
		}
	}
	return c
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
