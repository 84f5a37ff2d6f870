package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

func newWebhookHandler(t *testing.T) (*Handler, *MemoryQueue) {
	t.Helper()
	queue := NewMemoryQueue(16)
	publisher := NewPublisher(queue, logging.Default())
	return NewHandler(publisher, "verify-me", nil, logging.Default()), queue
}

func TestVerify_EchoesChallenge(t *testing.T) {
	h, _ := newWebhookHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/facebook/leads?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Fatalf("expected challenge echo, got %q", rec.Body.String())
	}
}

func TestVerify_RejectsBadToken(t *testing.T) {
	h, _ := newWebhookHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/facebook/leads?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestReceive_EnqueuesLeadgenChanges(t *testing.T) {
	h, queue := newWebhookHandler(t)

	body := `{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"time": 1700000000,
			"changes": [
				{"field": "leadgen", "value": {
					"leadgen_id": "lg-1", "form_id": "form-1", "page_id": "page-1",
					"field_data": [{"name": "email", "values": ["jane@example.com"]}]
				}},
				{"field": "feed", "value": {}}
			]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/facebook/leads?org_id=org-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	messages, err := queue.Receive(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(messages))
	}

	var job Job
	if err := json.Unmarshal([]byte(messages[0].Body), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.OrgID != "org-1" || job.FormID != "form-1" || job.LeadgenID != "lg-1" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.ID == "" || job.ReceivedAt.IsZero() {
		t.Fatalf("job missing id or timestamp: %+v", job)
	}
}

func TestReceive_MissingOrg(t *testing.T) {
	h, _ := newWebhookHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/facebook/leads", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReceive_BadBody(t *testing.T) {
	h, _ := newWebhookHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/facebook/leads?org_id=org-1", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
