package fieldmap

import (
	"regexp"
	"strings"
)

// patternGroup is one detection rule: a destination CRM field and the label
// patterns that imply it. Rules are evaluated in table order and the first
// group with any matching pattern wins, so more specific groups must come
// before broader ones (first_name before full_name, postal_code before city).
type patternGroup struct {
	crmField string
	patterns []*regexp.Regexp
}

// detectionRules is data, not control flow: swapping or extending rules never
// touches Detect itself.
var detectionRules = []patternGroup{
	{FieldEmail, compileAll(
		`email`, `e-mail`, `mail`, `contact.*email`, `email.*address`,
	)},
	{FieldFirstName, compileAll(
		`^first.*name`, `^fname`, `^given.*name`, `^forename`, `^christian.*name`,
	)},
	{FieldLastName, compileAll(
		`^last.*name`, `^lname`, `^surname`, `^family.*name`,
	)},
	{FieldFullName, compileAll(
		`^full.*name`, `^name$`, `^your.*name`, `^contact.*name`, `^customer.*name`,
	)},
	{FieldPhone, compileAll(
		`phone`, `mobile`, `cell`, `telephone`, `contact.*number`, `whatsapp`, `sms`,
	)},
	{"address", compileAll(`address`, `location`, `street`)},
	{"city", compileAll(`city`, `town`)},
	{"postal_code", compileAll(`postal.*code`, `postcode`, `zip.*code`, `zip$`)},
	{"country", compileAll(`country`, `nation`)},
	{"company", compileAll(`company`, `organization`, `organisation`, `business`, `employer`)},
	{"notes", compileAll(`notes`, `message`, `comments`, `additional`, `description`)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+expr))
	}
	return out
}

var customSlugRe = regexp.MustCompile(`[^a-z0-9]`)

// CustomFieldName synthesizes the custom CRM field name for an external field
// that matched no detection rule.
func CustomFieldName(fieldName string) string {
	return "custom_" + customSlugRe.ReplaceAllString(strings.ToLower(fieldName), "_")
}

// Detector classifies external form fields. The zero value is ready to use
// and normalizes phone fields for the GB region.
type Detector struct {
	// PhoneRegion is attached to the phone_format transformation of every
	// phone field the detector recognizes. Empty means GB.
	PhoneRegion string
}

// Detect classifies one external form field into a CRM field mapping. It
// never fails: fields that match nothing map to a synthesized custom field
// with AutoDetected false.
func (d Detector) Detect(field FormField) Mapping {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	fieldType := NormalizeFieldType(field.Type)

	m := Mapping{
		ID:           field.ID,
		FieldName:    field.Name,
		FieldLabel:   label,
		FieldType:    fieldType,
		CRMFieldType: CRMFieldCustom,
	}

	switch {
	case field.Type == "EMAIL" || fieldType == FieldTypeEmail:
		m.CRMField = FieldEmail
		m.CRMFieldType = CRMFieldStandard
		m.AutoDetected = true

	case field.Type == "PHONE_NUMBER" || fieldType == FieldTypePhoneNumber:
		m.CRMField = FieldPhone
		m.CRMFieldType = CRMFieldStandard
		m.AutoDetected = true
		m.Transformation = d.phoneTransformation()

	case field.Type == "DATETIME" || fieldType == FieldTypeDateTime:
		// Datetime implies a transformation but not a destination; the CRM
		// field falls through to the synthesized custom name below.
		m.Transformation = &Transformation{
			Type:    TransformDate,
			Options: &TransformOptions{DateFormat: "DD/MM/YYYY"},
		}

	default:
		for _, group := range detectionRules {
			if !anyMatch(group.patterns, label) {
				continue
			}
			m.CRMField = group.crmField
			if IsStandardField(group.crmField) {
				m.CRMFieldType = CRMFieldStandard
			}
			m.AutoDetected = true
			if group.crmField == FieldPhone {
				m.Transformation = d.phoneTransformation()
			}
			break
		}
	}

	if m.CRMField == "" {
		m.CRMField = CustomFieldName(field.Name)
	}
	return m
}

// DetectAll classifies every field of a form definition.
func (d Detector) DetectAll(fields []FormField) []Mapping {
	mappings := make([]Mapping, 0, len(fields))
	for _, field := range fields {
		mappings = append(mappings, d.Detect(field))
	}
	return mappings
}

// Suggest proposes auto-detected mappings for form fields that no existing
// mapping covers. Fields the matcher cannot classify are not suggested.
func (d Detector) Suggest(fields []FormField, existing []Mapping) []Mapping {
	mapped := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		mapped[m.ID] = struct{}{}
	}

	var suggestions []Mapping
	for _, field := range fields {
		if _, ok := mapped[field.ID]; ok {
			continue
		}
		if m := d.Detect(field); m.AutoDetected {
			suggestions = append(suggestions, m)
		}
	}
	return suggestions
}

// Detect classifies a field with the default GB phone region.
func Detect(field FormField) Mapping { return Detector{}.Detect(field) }

// DetectAll classifies every field of a form definition with the default
// GB phone region.
func DetectAll(fields []FormField) []Mapping { return Detector{}.DetectAll(fields) }

// Suggest proposes auto-detected mappings for fields no existing mapping
// covers, with the default GB phone region.
func Suggest(fields []FormField, existing []Mapping) []Mapping {
	return Detector{}.Suggest(fields, existing)
}

func anyMatch(patterns []*regexp.Regexp, label string) bool {
	for _, p := range patterns {
		if p.MatchString(label) {
			return true
		}
	}
	return false
}

func (d Detector) phoneTransformation() *Transformation {
	region := d.PhoneRegion
	if region == "" {
		region = "GB"
	}
	return &Transformation{
		Type:    TransformPhone,
		Options: &TransformOptions{PhoneRegion: region},
	}
}
