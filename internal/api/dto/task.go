package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a task
// @Description Request body for creating a new paid task offer
type CreateTaskRequest struct {
	Title          string     `json:"title" binding:"required,min=5,max=100"`
	Description    string     `json:"description" binding:"required,min=10,max=500"`
	WebsiteURL     string     `json:"websiteUrl" binding:"required,url"`
	WebsiteName    string     `json:"websiteName" binding:"required"`
	PaymentPerTask float64    `json:"paymentPerTask" binding:"required,gte=0.01,lte=1000"`
	PlanType       string     `json:"planType" binding:"required,oneof=basic standard premium vip"`
	Category       string     `json:"category" binding:"required,oneof=website-visit social-media survey review video-watch other"`
	EstimatedTime  int        `json:"estimatedTime" binding:"required,gte=1,lte=60"`
	Requirements   string     `json:"requirements,omitempty" binding:"omitempty,max=300"`
	Instructions   string     `json:"instructions" binding:"required,max=1000"`
	MaxCompletions *int       `json:"maxCompletions,omitempty" binding:"omitempty,gte=1"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	Priority       string     `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
	IsActive       *bool      `json:"isActive,omitempty"`
}

// UpdateTaskRequest represents the request body for updating a task.
// All fields are optional; absent fields are left untouched.
// @Description Request body for updating task information
type UpdateTaskRequest struct {
	Title          *string    `json:"title,omitempty" binding:"omitempty,min=5,max=100"`
	Description    *string    `json:"description,omitempty" binding:"omitempty,min=10,max=500"`
	WebsiteURL     *string    `json:"websiteUrl,omitempty" binding:"omitempty,url"`
	WebsiteName    *string    `json:"websiteName,omitempty"`
	PaymentPerTask *float64   `json:"paymentPerTask,omitempty" binding:"omitempty,gte=0.01,lte=1000"`
	PlanType       *string    `json:"planType,omitempty" binding:"omitempty,oneof=basic standard premium vip"`
	Category       *string    `json:"category,omitempty" binding:"omitempty,oneof=website-visit social-media survey review video-watch other"`
	EstimatedTime  *int       `json:"estimatedTime,omitempty" binding:"omitempty,gte=1,lte=60"`
	Requirements   *string    `json:"requirements,omitempty" binding:"omitempty,max=300"`
	Instructions   *string    `json:"instructions,omitempty" binding:"omitempty,max=1000"`
	MaxCompletions *int       `json:"maxCompletions,omitempty" binding:"omitempty,gte=1"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	Priority       *string    `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
	IsActive       *bool      `json:"isActive,omitempty"`
}

// TaskResponse represents a task in API responses
// @Description Detailed task information returned in API responses
type TaskResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	WebsiteURL         string           `json:"websiteUrl"`
	WebsiteName        string           `json:"websiteName"`
	PaymentPerTask     float64          `json:"paymentPerTask"`
	PlanType           string           `json:"planType"`
	Category           string           `json:"category"`
	EstimatedTime      int              `json:"estimatedTime"`
	Requirements       string           `json:"requirements,omitempty"`
	Instructions       string           `json:"instructions,omitempty"`
	MaxCompletions     *int             `json:"maxCompletions,omitempty"`
	CurrentCompletions int              `json:"currentCompletions"`
	ExpiresAt          *time.Time       `json:"expiresAt,omitempty"`
	Priority           string           `json:"priority"`
	IsActive           bool             `json:"isActive"`
	CreatedBy          uuid.UUID        `json:"createdBy"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	CompletionStats    map[string]int64 `json:"completionStats,omitempty"`
}

// TaskListResponse represents a paginated list of tasks with metadata
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// TaskFilterRequest represents the query parameters for filtering tasks
type TaskFilterRequest struct {
	PlanType  string `form:"planType" binding:"omitempty,oneof=basic standard premium vip"`
	Category  string `form:"category" binding:"omitempty,oneof=website-visit social-media survey review video-watch other"`
	IsActive  *bool  `form:"isActive"`
	CreatedBy string `form:"createdBy" binding:"omitempty,uuid"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,gte=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,gte=1,lte=100"`
}

// AvailableTasksResponse represents the tasks a user may start, scoped to
// their subscription tier
type AvailableTasksResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	PlanType string         `json:"planType"`
	Count    int            `json:"count"`
}

// DeleteTaskResponse reports whether the task was removed or only deactivated
type DeleteTaskResponse struct {
	Deleted     bool   `json:"deleted"`
	Deactivated bool   `json:"deactivated"`
	Message     string `json:"message"`
}

// PlanTasksResponse represents all tasks of one plan tier (admin view)
type PlanTasksResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	PlanType string         `json:"planType"`
	Count    int            `json:"count"`
}
