package task

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanType is the subscription tier gating which tasks a user may see.
type PlanType string

const (
	PlanBasic    PlanType = "basic"
	PlanStandard PlanType = "standard"
	PlanPremium  PlanType = "premium"
	PlanVIP      PlanType = "vip"
)

func (p PlanType) IsValid() bool {
	switch p {
	case PlanBasic, PlanStandard, PlanPremium, PlanVIP:
		return true
	}
	return false
}

// PlanTypes lists every tier in ascending order.
func PlanTypes() []PlanType {
	return []PlanType{PlanBasic, PlanStandard, PlanPremium, PlanVIP}
}

type Category string

const (
	CategoryWebsiteVisit Category = "website-visit"
	CategorySocialMedia  Category = "social-media"
	CategorySurvey       Category = "survey"
	CategoryReview       Category = "review"
	CategoryVideoWatch   Category = "video-watch"
	CategoryOther        Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryWebsiteVisit, CategorySocialMedia, CategorySurvey,
		CategoryReview, CategoryVideoWatch, CategoryOther:
		return true
	}
	return false
}

func Categories() []Category {
	return []Category{
		CategoryWebsiteVisit, CategorySocialMedia, CategorySurvey,
		CategoryReview, CategoryVideoWatch, CategoryOther,
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Payment bounds in dollars and estimated time bounds in minutes.
const (
	MinPayment       = 0.01
	MaxPayment       = 1000.0
	MinEstimatedTime = 1
	MaxEstimatedTime = 60
)

var urlPattern = regexp.MustCompile(`^https?://.+\..+`)

// ValidationError reports the first violated constraint on a task, field by field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Task is a sponsored unit of work offered to users of a given plan tier.
type Task struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Title          string    `json:"title" gorm:"not null;size:100"`
	Description    string    `json:"description" gorm:"not null;size:500"`
	WebsiteURL     string    `json:"website_url" gorm:"not null"`
	WebsiteName    string    `json:"website_name" gorm:"not null"`
	PaymentPerTask float64   `json:"payment_per_task" gorm:"not null"`
	PlanType       PlanType  `json:"plan_type" gorm:"not null;index:idx_task_plan_active"`
	Category       Category  `json:"category" gorm:"not null;index:idx_task_category"`
	EstimatedTime  int       `json:"estimated_time" gorm:"not null"` // minutes
	Requirements   string    `json:"requirements,omitempty" gorm:"size:300"`
	Instructions   string    `json:"instructions" gorm:"not null;size:1000"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true;index:idx_task_plan_active"`

	// MaxCompletions nil means unlimited. CurrentCompletions only moves
	// through Repository.IncrementCompletions, never through Save.
	MaxCompletions     *int `json:"max_completions,omitempty"`
	CurrentCompletions int  `json:"current_completions" gorm:"not null;default:0"`

	CreatedBy uuid.UUID  `json:"created_by" gorm:"type:uuid;not null;index:idx_task_creator"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"index:idx_task_expiry"`
	Priority  Priority   `json:"priority" gorm:"not null;default:'medium'"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// IsExpired reports whether the task's absolute deadline has passed.
func (t *Task) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

// IsAvailable is the single source of truth for "can a user still start this
// task". Every code path that offers tasks to users must go through it.
func (t *Task) IsAvailable(now time.Time) bool {
	if t.MaxCompletions != nil && t.CurrentCompletions >= *t.MaxCompletions {
		return false
	}
	if !t.IsActive || t.IsExpired(now) {
		return false
	}
	return true
}

// Validate checks every catalog constraint and returns the first violation.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Message: "task title is required"}
	}
	if len(t.Title) > 100 {
		return &ValidationError{Field: "title", Message: "title cannot exceed 100 characters"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Message: "task description is required"}
	}
	if len(t.Description) > 500 {
		return &ValidationError{Field: "description", Message: "description cannot exceed 500 characters"}
	}
	if !urlPattern.MatchString(t.WebsiteURL) {
		return &ValidationError{Field: "website_url", Message: "please enter a valid URL starting with http:// or https://"}
	}
	if strings.TrimSpace(t.WebsiteName) == "" {
		return &ValidationError{Field: "website_name", Message: "website name is required"}
	}
	if t.PaymentPerTask < MinPayment {
		return &ValidationError{Field: "payment_per_task", Message: "payment must be at least $0.01"}
	}
	if t.PaymentPerTask > MaxPayment {
		return &ValidationError{Field: "payment_per_task", Message: "payment cannot exceed $1000"}
	}
	if !t.PlanType.IsValid() {
		return &ValidationError{Field: "plan_type", Message: "plan type must be basic, standard, premium, or vip"}
	}
	if !t.Category.IsValid() {
		return &ValidationError{Field: "category", Message: "invalid category"}
	}
	if t.EstimatedTime < MinEstimatedTime {
		return &ValidationError{Field: "estimated_time", Message: "estimated time must be at least 1 minute"}
	}
	if t.EstimatedTime > MaxEstimatedTime {
		return &ValidationError{Field: "estimated_time", Message: "estimated time cannot exceed 60 minutes"}
	}
	if len(t.Requirements) > 300 {
		return &ValidationError{Field: "requirements", Message: "requirements cannot exceed 300 characters"}
	}
	if strings.TrimSpace(t.Instructions) == "" {
		return &ValidationError{Field: "instructions", Message: "instructions are required"}
	}
	if len(t.Instructions) > 1000 {
		return &ValidationError{Field: "instructions", Message: "instructions cannot exceed 1000 characters"}
	}
	if t.MaxCompletions != nil && *t.MaxCompletions < 1 {
		return &ValidationError{Field: "max_completions", Message: "max completions must be at least 1"}
	}
	if !t.Priority.IsValid() {
		return &ValidationError{Field: "priority", Message: "priority must be low, medium, or high"}
	}
	if t.CreatedBy == uuid.Nil {
		return &ValidationError{Field: "created_by", Message: "creator is required"}
	}
	return nil
}

// BeforeCreate is called before creating a new task record
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Category == "" {
		t.Category = CategoryWebsiteVisit
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// BeforeSave deactivates any task whose completion cap has been exceeded.
// Runs on every write, not just at the boundary.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.MaxCompletions != nil && t.CurrentCompletions > *t.MaxCompletions {
		t.IsActive = false
	}
	return nil
}

// BeforeUpdate is called before updating a task record
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}
