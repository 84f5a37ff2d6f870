package fieldmap

import "fmt"

// ValidationResult reports structural problems with a mapping set. Valid is
// true only when Errors is empty; the "Warning:" advisory about missing
// contact fields counts as an error here on purpose, so callers decide
// whether to block or merely warn.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// validPhoneRegions is the allow-list for phone_format transformations.
var validPhoneRegions = map[string]struct{}{
	"GB": {}, "US": {}, "CA": {}, "AU": {}, "FR": {}, "DE": {}, "ES": {}, "IT": {},
}

// validDateFormats is the allow-list for date_format transformations.
var validDateFormats = map[string]struct{}{
	"DD/MM/YYYY": {}, "MM/DD/YYYY": {}, "YYYY-MM-DD": {},
}

// Validate checks a mapping set for structural correctness. All problems are
// accumulated; it never short-circuits.
func Validate(mappings []Mapping) ValidationResult {
	var errs []string
	crmFields := make(map[string]struct{}, len(mappings))

	for _, m := range mappings {
		if m.FieldName == "" {
			errs = append(errs, fmt.Sprintf("Missing Facebook field name for mapping %s", m.ID))
		}
		if m.CRMField == "" {
			errs = append(errs, fmt.Sprintf("Missing CRM field for Facebook field %s", m.FieldName))
		}

		// Duplicates are only an error for standard fields; each custom field
		// gets a distinct synthesized name anyway.
		if m.CRMFieldType == CRMFieldStandard {
			if _, seen := crmFields[m.CRMField]; seen {
				errs = append(errs, fmt.Sprintf("Duplicate mapping to CRM field: %s", m.CRMField))
			}
		}
		crmFields[m.CRMField] = struct{}{}

		if m.Transformation != nil {
			errs = append(errs, validateTransformation(m.Transformation)...)
		}
	}

	if !hasContactField(mappings) {
		errs = append(errs, "Warning: No contact information fields (email, phone, or name) mapped")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateTransformation(tr *Transformation) []string {
	if tr.Options == nil {
		return nil
	}
	var errs []string

	switch tr.Type {
	case TransformPhone:
		if region := tr.Options.PhoneRegion; region != "" {
			if _, ok := validPhoneRegions[region]; !ok {
				errs = append(errs, fmt.Sprintf("Invalid phone region: %s", region))
			}
		}
	case TransformDate:
		if format := tr.Options.DateFormat; format != "" {
			if _, ok := validDateFormats[format]; !ok {
				errs = append(errs, fmt.Sprintf("Invalid date format: %s", format))
			}
		}
	case TransformBoolean:
		if bm := tr.Options.BooleanMapping; bm != nil {
			if bm.True == "" || bm.False == "" {
				errs = append(errs, "Boolean mapping must specify both true and false values")
			}
		}
	}
	return errs
}

func hasContactField(mappings []Mapping) bool {
	for _, m := range mappings {
		switch m.CRMField {
		case FieldEmail, FieldPhone, FieldFullName, FieldFirstName:
			return true
		}
	}
	return false
}
