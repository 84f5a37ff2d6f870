package fieldmap

import (
	"reflect"
	"testing"
)

func TestMerge_SavedWinsOnCollision(t *testing.T) {
	saved := []Mapping{
		{ID: "f1", FieldName: "q_email", CRMField: FieldEmail, CRMFieldType: CRMFieldStandard},
	}
	detected := []Mapping{
		{ID: "f1", FieldName: "q_email", CRMField: "custom_q_email", CRMFieldType: CRMFieldCustom, AutoDetected: true},
		{ID: "f2", FieldName: "q_phone", CRMField: FieldPhone, CRMFieldType: CRMFieldStandard, AutoDetected: true},
	}

	merged := Merge(detected, saved)

	if len(merged) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(merged))
	}
	if merged[0].CRMField != FieldEmail {
		t.Fatalf("saved mapping must win for f1, got %s", merged[0].CRMField)
	}
	if merged[1].ID != "f2" {
		t.Fatalf("new detection should follow saved set, got %s", merged[1].ID)
	}
}

func TestMerge_OrderIsSavedThenNewDetections(t *testing.T) {
	saved := []Mapping{{ID: "s1"}, {ID: "s2"}}
	detected := []Mapping{{ID: "d1"}, {ID: "s1"}, {ID: "d2"}}

	merged := Merge(detected, saved)

	var ids []string
	for _, m := range merged {
		ids = append(ids, m.ID)
	}
	want := []string{"s1", "s2", "d1", "d2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected order %v, got %v", want, ids)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	saved := []Mapping{
		{ID: "s1", CRMField: FieldEmail},
		{ID: "s2", CRMField: "custom_a"},
	}
	detected := []Mapping{
		{ID: "s1", CRMField: "custom_s1", AutoDetected: true},
		{ID: "d1", CRMField: FieldPhone, AutoDetected: true},
	}

	once := Merge(detected, saved)
	twice := Merge(detected, once)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMerge_EmptyInputs(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}

	detected := []Mapping{{ID: "d1"}}
	if got := Merge(detected, nil); len(got) != 1 || got[0].ID != "d1" {
		t.Fatalf("expected detected passthrough, got %v", got)
	}

	saved := []Mapping{{ID: "s1"}}
	if got := Merge(nil, saved); len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("expected saved passthrough, got %v", got)
	}
}
