package ingest

import (
	"context"
	"fmt"

	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// Publisher enqueues lead jobs for asynchronous processing.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("ingest: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueLead publishes a lead submission job.
func (p *Publisher) EnqueueLead(ctx context.Context, job Job) error {
	if ctx == nil {
		ctx = context.Background()
	}

	job = normalizeJob(job)
	if err := p.queue.Send(ctx, job); err != nil {
		return fmt.Errorf("ingest: failed to enqueue lead: %w", err)
	}

	p.logger.Debug("lead job enqueued", "job_id", job.ID, "org_id", job.OrgID, "form_id", job.FormID)
	return nil
}
