package fieldmap

import "time"

// Version is the schema version written to new mapping configurations.
const Version = "1.0"

// DefaultStoredMappings builds the configuration a freshly seen external form
// starts with: no field mappings yet, static lead_source and status custom
// mappings, and contact auto-creation on.
func DefaultStoredMappings() *StoredMappings {
	now := time.Now().UTC()
	return &StoredMappings{
		Version:   Version,
		CreatedAt: now,
		UpdatedAt: now,
		Mappings:  []Mapping{},
		CustomMappings: []CustomMapping{
			{FieldName: "lead_source", FieldValue: "Facebook", IsStatic: true},
			{FieldName: "status", FieldValue: "new", IsStatic: true},
		},
		AutoCreateContact: true,
		DefaultLeadSource: "Facebook",
	}
}
