package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, job Job) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Job is one lead submission queued for processing.
type Job struct {
	ID         string          `json:"id"`
	OrgID      string          `json:"org_id"`
	FormID     string          `json:"form_id"`
	LeadgenID  string          `json:"leadgen_id"`
	ReceivedAt time.Time       `json:"received_at"`
	FieldData  json.RawMessage `json:"field_data"`
}

// normalizeJob fills the identity and receipt time a fresh submission lacks.
func normalizeJob(job Job) Job {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.ReceivedAt.IsZero() {
		job.ReceivedAt = time.Now().UTC()
	}
	return job
}

func marshalJob(job Job) (string, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("ingest: encode job: %w", err)
	}
	return string(body), nil
}
