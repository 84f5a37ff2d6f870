package ingest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/atlasfit/gym-crm-platform/internal/observability/metrics"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// WebhookEvent is the Meta leadgen webhook envelope.
type WebhookEvent struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Time    int64           `json:"time"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value LeadgenValue `json:"value"`
}

// LeadgenValue carries one lead submission. FieldData holds the submitted
// answers in either payload shape the pipeline accepts.
type LeadgenValue struct {
	LeadgenID   string          `json:"leadgen_id"`
	FormID      string          `json:"form_id"`
	PageID      string          `json:"page_id"`
	CreatedTime int64           `json:"created_time"`
	FieldData   json.RawMessage `json:"field_data"`
}

// Handler receives Facebook lead webhooks and enqueues ingestion jobs.
type Handler struct {
	publisher   *Publisher
	verifyToken string
	metrics     *metrics.IngestMetrics
	logger      *logging.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(publisher *Publisher, verifyToken string, m *metrics.IngestMetrics, logger *logging.Logger) *Handler {
	if publisher == nil {
		panic("ingest: publisher required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		publisher:   publisher,
		verifyToken: verifyToken,
		metrics:     m,
		logger:      logger,
	}
}

// Verify handles the GET webhook verification challenge from Meta.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// Receive handles POST webhook events. Each leadgen change becomes one
// queued job; the response never waits on processing.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		h.metrics.ObserveWebhook("missing_org")
		http.Error(w, "missing org_id", http.StatusBadRequest)
		return
	}

	var event WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.metrics.ObserveWebhook("bad_payload")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	received := time.Now().UTC()
	enqueued := 0
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" {
				continue
			}
			if change.Value.FormID == "" {
				h.logger.Warn("leadgen change without form id skipped", "org_id", orgID, "page_id", change.Value.PageID)
				continue
			}

			job := Job{
				OrgID:      orgID,
				FormID:     change.Value.FormID,
				LeadgenID:  change.Value.LeadgenID,
				ReceivedAt: received,
				FieldData:  change.Value.FieldData,
			}
			if err := h.publisher.EnqueueLead(r.Context(), job); err != nil {
				h.logger.Error("failed to enqueue lead", "error", err, "org_id", orgID, "form_id", job.FormID)
				h.metrics.ObserveWebhook("enqueue_failed")
				http.Error(w, "failed to accept lead", http.StatusInternalServerError)
				return
			}
			enqueued++
		}
	}

	h.metrics.ObserveWebhook("accepted")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"enqueued": enqueued})
}
