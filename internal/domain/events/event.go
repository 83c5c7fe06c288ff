package events

import (
	"time"

	"github.com/google/uuid"
)

// Submission event types
const (
	EventSubmissionPending  = "submission:pending"
	EventSubmissionApproved = "submission:approved"
	EventSubmissionRejected = "submission:rejected"
)

// SubmissionEventChannel is the Redis channel submission events are published on.
const SubmissionEventChannel = "submissions:events"

// SubmissionEvent is the payload carried by every submission lifecycle event.
type SubmissionEvent struct {
	EventType    string    `json:"event_type"`
	SubmissionID uuid.UUID `json:"submission_id"`
	UserID       uuid.UUID `json:"user_id"`
	TaskID       uuid.UUID `json:"task_id"`
	Timestamp    time.Time `json:"timestamp"`
}
