package fieldmap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload supplies raw values by external field name. The two concrete shapes
// are the only ones the ads platform delivers; anything else must be
// normalized by the caller before reaching Apply.
type Payload interface {
	Value(name string) (any, bool)
}

// FlatPayload is the flat key-to-value submission shape.
type FlatPayload map[string]any

// Value returns the value stored under name.
func (p FlatPayload) Value(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// LeadField is one entry of the ads platform's multi-value submission shape.
type LeadField struct {
	Name   string `json:"name"`
	Values []any  `json:"values,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// FieldListPayload is the array-of-fields submission shape.
type FieldListPayload []LeadField

// Value returns the first of the entry's Values when present, else its scalar
// Value.
func (p FieldListPayload) Value(name string) (any, bool) {
	for _, f := range p {
		if f.Name != name {
			continue
		}
		if len(f.Values) > 0 {
			return f.Values[0], true
		}
		return f.Value, true
	}
	return nil, false
}

// DecodePayload parses raw JSON into one of the two supported payload shapes.
func DecodePayload(raw json.RawMessage) (Payload, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var fields FieldListPayload
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("fieldmap: decode field list payload: %w", err)
		}
		return fields, nil
	}
	var flat FlatPayload
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("fieldmap: decode flat payload: %w", err)
	}
	return flat, nil
}

// Apply runs a mapping set over a lead payload and produces the normalized
// CRM record. Mappings whose raw value is absent, nil, or an empty string
// write no key. When crm_field is full_name and the value is a string, the
// name is split: first token to first_name, the remainder (if any) to
// last_name, and the complete value to full_name.
//
// Later mappings overwrite keys written by earlier ones (last-write-wins in
// list order). fallbacks lists the CRM fields whose transformation degraded
// to a best-effort value, for the caller to log.
func Apply(payload Payload, mappings []Mapping) (record map[string]any, fallbacks []string) {
	record = make(map[string]any)

	for _, m := range mappings {
		raw, found := payload.Value(m.FieldName)
		if !found || raw == nil {
			continue
		}
		if s, isStr := raw.(string); isStr && s == "" {
			continue
		}

		value := raw
		if m.Transformation != nil {
			var clean bool
			value, clean = Transform(raw, m.Transformation)
			if !clean {
				fallbacks = append(fallbacks, m.CRMField)
			}
		}

		if m.CRMField == FieldFullName {
			if s, isStr := value.(string); isStr {
				splitFullName(record, s)
				record[FieldFullName] = value
				continue
			}
		}

		record[m.CRMField] = value
	}
	return record, fallbacks
}

func splitFullName(record map[string]any, full string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return
	}
	record[FieldFirstName] = parts[0]
	if len(parts) > 1 {
		record[FieldLastName] = strings.Join(parts[1:], " ")
	}
}
