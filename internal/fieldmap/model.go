// Package fieldmap converts external lead-form submissions into the CRM's
// contact schema. It covers detection of likely CRM fields from form field
// metadata, value transformation (phone, date, boolean, number, text),
// validation and merging of mapping sets, and application of a mapping set to
// a raw lead payload. Everything here is pure computation; persistence lives
// in internal/forms.
package fieldmap

import (
	"strings"
	"time"
)

// FieldType is the closed set of external form field types we understand.
type FieldType string

const (
	FieldTypeShortAnswer    FieldType = "SHORT_ANSWER"
	FieldTypePhoneNumber    FieldType = "PHONE_NUMBER"
	FieldTypeEmail          FieldType = "EMAIL"
	FieldTypeMultipleChoice FieldType = "MULTIPLE_CHOICE"
	FieldTypeDateTime       FieldType = "DATETIME"
)

// CRMFieldType distinguishes the fixed contact attributes from synthesized
// custom fields.
type CRMFieldType string

const (
	CRMFieldStandard CRMFieldType = "standard"
	CRMFieldCustom   CRMFieldType = "custom"
)

// Standard contact field names.
const (
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldFullName  = "full_name"
)

// TransformType identifies a value transformation.
type TransformType string

const (
	TransformText    TransformType = "text"
	TransformPhone   TransformType = "phone_format"
	TransformDate    TransformType = "date_format"
	TransformBoolean TransformType = "boolean"
	TransformNumber  TransformType = "number"
)

// BooleanMapping supplies custom true/false string representations.
type BooleanMapping struct {
	True  string `json:"true"`
	False string `json:"false"`
}

// TransformOptions carries per-type transformation settings.
type TransformOptions struct {
	PhoneRegion    string          `json:"phone_region,omitempty"`
	DateFormat     string          `json:"date_format,omitempty"`
	BooleanMapping *BooleanMapping `json:"boolean_mapping,omitempty"`
}

// Transformation describes how to convert a raw external value into
// normalized internal form.
type Transformation struct {
	Type    TransformType     `json:"type"`
	Options *TransformOptions `json:"options,omitempty"`
}

// Mapping binds one external form field to a CRM field.
//
// JSON names keep the snake_case the stored rows have carried since the
// feature shipped.
type Mapping struct {
	ID             string          `json:"id"`
	FieldName      string          `json:"facebook_field_name"`
	FieldLabel     string          `json:"facebook_field_label"`
	FieldType      FieldType       `json:"facebook_field_type"`
	CRMField       string          `json:"crm_field"`
	CRMFieldType   CRMFieldType    `json:"crm_field_type"`
	Transformation *Transformation `json:"transformation,omitempty"`
	IsRequired     bool            `json:"is_required"`
	AutoDetected   bool            `json:"auto_detected"`
}

// CustomMapping injects a constant or derived value regardless of the
// external payload, e.g. lead_source = "Facebook".
type CustomMapping struct {
	FieldName  string `json:"field_name"`
	FieldValue any    `json:"field_value"`
	IsStatic   bool   `json:"is_static"`
}

// StoredMappings is the persisted mapping configuration for one external form
// within one org.
type StoredMappings struct {
	Version           string          `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Mappings          []Mapping       `json:"mappings"`
	CustomMappings    []CustomMapping `json:"custom_mappings"`
	AutoCreateContact bool            `json:"auto_create_contact"`
	DefaultLeadSource string          `json:"default_lead_source"`
}

// FormField is the external form's description of a single question.
type FormField struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type"`
}

// IsStandardField reports whether name is one of the fixed contact attributes.
func IsStandardField(name string) bool {
	switch name {
	case FieldEmail, FieldPhone, FieldFirstName, FieldLastName, FieldFullName:
		return true
	}
	return false
}

// NormalizeFieldType maps a raw external type string onto the closed FieldType
// enumeration. Unrecognized types become SHORT_ANSWER.
func NormalizeFieldType(raw string) FieldType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "EMAIL":
		return FieldTypeEmail
	case "PHONE_NUMBER", "PHONE":
		return FieldTypePhoneNumber
	case "DATETIME", "DATE_TIME":
		return FieldTypeDateTime
	case "MULTIPLE_CHOICE", "CHECKBOX", "RADIO":
		return FieldTypeMultipleChoice
	case "SHORT_ANSWER", "TEXT", "PARAGRAPH":
		return FieldTypeShortAnswer
	default:
		return FieldTypeShortAnswer
	}
}
