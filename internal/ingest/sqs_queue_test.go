package ingest

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestJobAttributes(t *testing.T) {
	attrs := jobAttributes(Job{ID: "job-1", OrgID: "org-1", FormID: "form-1"})
	if len(attrs) != 2 {
		t.Fatalf("expected org and form attributes, got %+v", attrs)
	}
	if got := aws.ToString(attrs["org_id"].StringValue); got != "org-1" {
		t.Fatalf("expected org attribute, got %q", got)
	}
	if got := aws.ToString(attrs["form_id"].StringValue); got != "form-1" {
		t.Fatalf("expected form attribute, got %q", got)
	}
	if got := aws.ToString(attrs["org_id"].DataType); got != "String" {
		t.Fatalf("expected String data type, got %q", got)
	}

	if attrs := jobAttributes(Job{ID: "job-2"}); attrs != nil {
		t.Fatalf("expected no attributes without org or form, got %+v", attrs)
	}
}
