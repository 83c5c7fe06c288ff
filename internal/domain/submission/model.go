package submission

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status is the lifecycle state of one user's attempt at one task.
type Status string

const (
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusExpired    Status = "expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusPending,
		StatusApproved, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// transitions is the single source of truth for the lifecycle state machine.
// Every guard lives here; no endpoint re-implements its own status checks.
var transitions = map[Status][]Status{
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {StatusPending},
	StatusPending:    {StatusApproved, StatusRejected, StatusExpired},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

const (
	// ReviewWindow is how long a pending submission waits for admin review
	// before the sweeper expires it.
	ReviewWindow = 24 * time.Hour

	// MinCommentLength is the minimum review comment length, in characters.
	MinCommentLength = 20

	MinRating = 1
	MaxRating = 5

	// ExpiredReason is recorded on submissions the sweeper expires.
	ExpiredReason = "Auto-rejected: 24-hour review period expired"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyAssigned    = errors.New("task already assigned to user")
	ErrNotInProgress      = errors.New("task not found or not in progress")
	ErrNotPending         = errors.New("submission is not in pending status")
	ErrCommentTooShort    = errors.New("comment must be at least 20 characters")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrReasonRequired     = errors.New("rejection reason is required")
	ErrInvalidInput       = errors.New("invalid input")
)

// Review is the payload a user attaches when submitting a completed task.
type Review struct {
	Rating      *int                        `json:"rating,omitempty" gorm:"column:review_rating"`
	Comment     string                      `json:"comment" gorm:"column:review_comment;size:500"`
	Screenshots datatypes.JSONSlice[string] `json:"screenshots" gorm:"column:review_screenshots"`
	TimeSpent   *int                        `json:"time_spent,omitempty" gorm:"column:review_time_spent"` // minutes
}

// Submission is the record of one user's attempt at one task. At most one
// exists per (user, task) pair, ever; resolved records are kept for audit.
type Submission struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_submission_user_task;index:idx_submission_user_status"`
	TaskID uuid.UUID `json:"task_id" gorm:"type:uuid;not null;uniqueIndex:idx_submission_user_task;index:idx_submission_task_status"`
	Status Status    `json:"status" gorm:"not null;default:'assigned';index:idx_submission_user_status;index:idx_submission_task_status;index:idx_submission_review_order;index:idx_submission_expiry"`

	// Each timestamp is set exactly once, on the transition that produces
	// it, and never overwritten.
	StartedAt   *time.Time `json:"started_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" gorm:"index:idx_submission_review_order"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ExpiresAt is stamped on submit (now + ReviewWindow) and is only
	// meaningful while status remains pending.
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"index:idx_submission_expiry"`

	Review Review `json:"review" gorm:"embedded"`

	Earnings        float64 `json:"earnings" gorm:"not null;default:0"`
	AdminNotes      string  `json:"admin_notes,omitempty" gorm:"size:300"`
	RejectionReason string  `json:"rejection_reason,omitempty" gorm:"size:200"`

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}

// IsExpired reports whether a still-pending submission has outlived its
// review window. Resolved submissions are never expired.
func (s *Submission) IsExpired(now time.Time) bool {
	return s.Status == StatusPending && s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// BeforeCreate is called before creating a new submission record
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusAssigned
	}
	if !s.Status.IsValid() {
		return ErrInvalidInput
	}
	if s.UserID == uuid.Nil || s.TaskID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}
