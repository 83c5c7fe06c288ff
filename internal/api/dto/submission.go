package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubmitReviewRequest carries the multipart form fields of a task submission.
// Screenshot files arrive separately as multipart file parts.
// @Description Form fields for submitting completed task evidence
type SubmitReviewRequest struct {
	Rating    *int   `form:"rating" binding:"omitempty,gte=1,lte=5"`
	Comment   string `form:"comment" binding:"required"`
	TimeSpent *int   `form:"timeSpent" binding:"omitempty,gte=1"`
}

// SubmissionResponse represents a submission in API responses
// @Description Submission lifecycle record returned in API responses
type SubmissionResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"userId"`
	TaskID          uuid.UUID  `json:"taskId"`
	Status          string     `json:"status"`
	Earnings        float64    `json:"earnings"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	Rating          *int       `json:"rating,omitempty"`
	Comment         string     `json:"comment,omitempty"`
	Screenshots     []string   `json:"screenshots,omitempty"`
	TimeSpent       *int       `json:"timeSpent,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	AdminNotes      string     `json:"adminNotes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Task *TaskResponse `json:"task,omitempty"`
	User *UserSummary  `json:"user,omitempty"`
}

// UserSummary is the reviewer-facing slice of a user record
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	PlanType string    `json:"planType"`
}

// SubmissionListResponse represents a paginated list of a user's submissions
type SubmissionListResponse struct {
	Submissions []SubmissionResponse     `json:"submissions"`
	TotalCount  int64                    `json:"totalCount"`
	Page        int                      `json:"page"`
	PageSize    int                      `json:"pageSize"`
	Stats       map[string]StatusStatDTO `json:"stats,omitempty"`
}

// StatusStatDTO aggregates count and earnings per submission status
type StatusStatDTO struct {
	Count    int64   `json:"count"`
	Earnings float64 `json:"earnings"`
}

// SubmissionFilterRequest represents query parameters for a user's submissions
type SubmissionFilterRequest struct {
	Status    string `form:"status" binding:"omitempty,oneof=assigned in-progress pending approved rejected expired"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,gte=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,gte=1,lte=100"`
}

// PendingFilterRequest represents query parameters for the admin review queue
type PendingFilterRequest struct {
	PlanType  string `form:"planType" binding:"omitempty,oneof=basic standard premium vip"`
	Category  string `form:"category" binding:"omitempty,oneof=website-visit social-media survey review video-watch other"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,gte=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,gte=1,lte=100"`
}

// ApproveSubmissionRequest represents the request body for approving a submission
type ApproveSubmissionRequest struct {
	AdminNotes string `json:"adminNotes,omitempty" binding:"omitempty,max=500"`
}

// ApproveSubmissionResponse reports the approval outcome and payout
type ApproveSubmissionResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Earnings   float64            `json:"earnings"`
	PayoutRef  string             `json:"payoutRef,omitempty"`
}

// RejectSubmissionRequest represents the request body for rejecting a submission
type RejectSubmissionRequest struct {
	Reason     string `json:"rejectionReason" binding:"required,min=3,max=500"`
	AdminNotes string `json:"adminNotes,omitempty" binding:"omitempty,max=500"`
}
