package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/cache"
)

// Publisher emits submission lifecycle events over Redis pub/sub. Publishing
// is strictly best-effort: failures are logged and swallowed so a broken
// event channel never fails a lifecycle operation.
type Publisher struct {
	redis  *cache.RedisClient
	logger *logrus.Logger
}

// NewPublisher creates a Publisher. A nil redis client disables publishing.
func NewPublisher(redis *cache.RedisClient, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Publisher{redis: redis, logger: logger}
}

// SubmissionPending implements submission.Notifier.
func (p *Publisher) SubmissionPending(ctx context.Context, submissionID, userID, taskID uuid.UUID) {
	p.publish(ctx, EventSubmissionPending, submissionID, userID, taskID)
}

// SubmissionApproved implements submission.Notifier.
func (p *Publisher) SubmissionApproved(ctx context.Context, submissionID, userID, taskID uuid.UUID) {
	p.publish(ctx, EventSubmissionApproved, submissionID, userID, taskID)
}

// SubmissionRejected implements submission.Notifier.
func (p *Publisher) SubmissionRejected(ctx context.Context, submissionID, userID, taskID uuid.UUID) {
	p.publish(ctx, EventSubmissionRejected, submissionID, userID, taskID)
}

func (p *Publisher) publish(ctx context.Context, eventType string, submissionID, userID, taskID uuid.UUID) {
	if p.redis == nil {
		return
	}

	event := SubmissionEvent{
		EventType:    eventType,
		SubmissionID: submissionID,
		UserID:       userID,
		TaskID:       taskID,
		Timestamp:    time.Now().UTC(),
	}

	if err := p.redis.PublishEvent(ctx, SubmissionEventChannel, event); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"event_type":    eventType,
			"submission_id": submissionID,
		}).Warn("failed to publish submission event")
	}
}
