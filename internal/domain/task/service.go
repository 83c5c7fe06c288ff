package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrHasSubmissions marks the soft delete-to-deactivate path: tasks that
	// have been attempted stay on record for the audit trail.
	ErrHasSubmissions = errors.New("task has submissions and cannot be deleted")
)

// SubmissionGauge exposes the submission counts the catalog needs without
// depending on the submission package directly.
type SubmissionGauge interface {
	CountForTask(ctx context.Context, taskID uuid.UUID) (int64, error)
	StatusCountsForTask(ctx context.Context, taskID uuid.UUID) (map[string]int64, error)
	TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// PlanResolver supplies a user's current subscription tier.
type PlanResolver interface {
	PlanFor(ctx context.Context, userID uuid.UUID) (PlanType, error)
}

// ListingCache caches the plan-scoped active task listings behind the
// availability endpoint. All cache use is best-effort: a nil or failing
// cache falls through to the repository.
type ListingCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	ClearByPattern(ctx context.Context, pattern string) error
}

const (
	listingKeyPrefix = "tasks:available:"
	listingTTL       = 5 * time.Minute
)

type CreateTaskInput struct {
	Title          string
	Description    string
	WebsiteURL     string
	WebsiteName    string
	PaymentPerTask float64
	PlanType       PlanType
	Category       Category
	EstimatedTime  int
	Requirements   string
	Instructions   string
	MaxCompletions *int
	ExpiresAt      *time.Time
	Priority       Priority
	IsActive       *bool
	CreatedBy      uuid.UUID
}

// UpdateTaskInput is a whitelist patch: created_by and current_completions are
// system-managed and deliberately absent.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	WebsiteURL     *string
	WebsiteName    *string
	PaymentPerTask *float64
	PlanType       *PlanType
	Category       *Category
	EstimatedTime  *int
	Requirements   *string
	Instructions   *string
	MaxCompletions *int
	ExpiresAt      *time.Time
	Priority       *Priority
	IsActive       *bool
}

// TaskWithStats carries per-status submission counts for the admin list view.
type TaskWithStats struct {
	Task
	CompletionStats map[string]int64 `json:"completion_stats"`
}

// DeleteOutcome reports whether a delete removed the task or only
// deactivated it because submissions reference it.
type DeleteOutcome struct {
	Deleted     bool
	Deactivated bool
}

type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*TaskWithStats, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]TaskWithStats, int64, error)
	UpdateTask(ctx context.Context, id uuid.UUID, input UpdateTaskInput) (*Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) (*DeleteOutcome, error)
	TasksByPlan(ctx context.Context, plan PlanType, isActive *bool) ([]Task, error)
	AvailableForUser(ctx context.Context, userID uuid.UUID) ([]Task, PlanType, error)
}

type service struct {
	repo   TaskRepository
	gauge  SubmissionGauge
	plans  PlanResolver
	cache  ListingCache
	logger *zap.Logger
}

func NewService(repo TaskRepository, gauge SubmissionGauge, plans PlanResolver, cache ListingCache, logger *zap.Logger) Service {
	return &service{repo: repo, gauge: gauge, plans: plans, cache: cache, logger: logger}
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	task := &Task{
		ID:             uuid.New(),
		Title:          input.Title,
		Description:    input.Description,
		WebsiteURL:     input.WebsiteURL,
		WebsiteName:    input.WebsiteName,
		PaymentPerTask: input.PaymentPerTask,
		PlanType:       input.PlanType,
		Category:       input.Category,
		EstimatedTime:  input.EstimatedTime,
		Requirements:   input.Requirements,
		Instructions:   input.Instructions,
		MaxCompletions: input.MaxCompletions,
		ExpiresAt:      input.ExpiresAt,
		Priority:       input.Priority,
		IsActive:       true,
		CreatedBy:      input.CreatedBy,
	}
	if input.IsActive != nil {
		task.IsActive = *input.IsActive
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.invalidateListing(ctx, task.PlanType)

	s.logger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("plan_type", string(task.PlanType)),
		zap.Float64("payment", task.PaymentPerTask))

	return task, nil
}

func (s *service) GetTask(ctx context.Context, id uuid.UUID) (*TaskWithStats, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.gauge.StatusCountsForTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TaskWithStats{Task: *task, CompletionStats: stats}, nil
}

func (s *service) ListTasks(ctx context.Context, filter TaskFilter) ([]TaskWithStats, int64, error) {
	tasks, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]TaskWithStats, 0, len(tasks))
	for _, t := range tasks {
		stats, err := s.gauge.StatusCountsForTask(ctx, t.ID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, TaskWithStats{Task: t, CompletionStats: stats})
	}
	return result, total, nil
}

func (s *service) UpdateTask(ctx context.Context, id uuid.UUID, input UpdateTaskInput) (*Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.WebsiteURL != nil {
		task.WebsiteURL = *input.WebsiteURL
	}
	if input.WebsiteName != nil {
		task.WebsiteName = *input.WebsiteName
	}
	if input.PaymentPerTask != nil {
		task.PaymentPerTask = *input.PaymentPerTask
	}
	if input.PlanType != nil {
		task.PlanType = *input.PlanType
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.EstimatedTime != nil {
		task.EstimatedTime = *input.EstimatedTime
	}
	if input.Requirements != nil {
		task.Requirements = *input.Requirements
	}
	if input.Instructions != nil {
		task.Instructions = *input.Instructions
	}
	if input.MaxCompletions != nil {
		task.MaxCompletions = input.MaxCompletions
	}
	if input.ExpiresAt != nil {
		task.ExpiresAt = input.ExpiresAt
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.IsActive != nil {
		task.IsActive = *input.IsActive
	}

	// Re-validate the merged result before persisting
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	// An update may move the task between plan tiers, so every cached
	// listing goes.
	s.clearListings(ctx)

	return task, nil
}

func (s *service) DeleteTask(ctx context.Context, id uuid.UUID) (*DeleteOutcome, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.gauge.CountForTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if count > 0 {
		// Keep the record for the audit trail, just stop offering it
		task.IsActive = false
		if err := s.repo.Update(ctx, task); err != nil {
			return nil, err
		}
		s.invalidateListing(ctx, task.PlanType)
		s.logger.Info("task deactivated instead of deleted",
			zap.String("task_id", id.String()),
			zap.Int64("submission_count", count))
		return &DeleteOutcome{Deactivated: true}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, task.PlanType)
	return &DeleteOutcome{Deleted: true}, nil
}

func (s *service) TasksByPlan(ctx context.Context, plan PlanType, isActive *bool) ([]Task, error) {
	if !plan.IsValid() {
		return nil, ErrInvalidInput
	}
	return s.repo.FindByPlan(ctx, plan, isActive)
}

func (s *service) AvailableForUser(ctx context.Context, userID uuid.UUID) ([]Task, PlanType, error) {
	plan, err := s.plans.PlanFor(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	tasks, err := s.activeTasksForPlan(ctx, plan)
	if err != nil {
		return nil, "", err
	}

	startedIDs, err := s.gauge.TaskIDsForUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	started := make(map[uuid.UUID]struct{}, len(startedIDs))
	for _, id := range startedIDs {
		started[id] = struct{}{}
	}

	now := time.Now()
	available := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsAvailable(now) {
			continue
		}
		if _, taken := started[t.ID]; taken {
			continue
		}
		available = append(available, t)
	}
	return available, plan, nil
}

// activeTasksForPlan returns the active tasks for a plan tier, served from
// the listing cache when possible. Per-user filtering stays out of the cache
// so one entry serves every user on the tier.
func (s *service) activeTasksForPlan(ctx context.Context, plan PlanType) ([]Task, error) {
	active := true
	if s.cache == nil {
		return s.repo.FindByPlan(ctx, plan, &active)
	}

	key := listingKeyPrefix + string(plan)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var tasks []Task
		if err := json.Unmarshal([]byte(cached), &tasks); err == nil {
			return tasks, nil
		}
	}

	tasks, err := s.repo.FindByPlan(ctx, plan, &active)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(tasks); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), listingTTL); err != nil {
			s.logger.Warn("failed to cache task listing",
				zap.String("plan_type", string(plan)),
				zap.Error(err))
		}
	}
	return tasks, nil
}

func (s *service) invalidateListing(ctx context.Context, plan PlanType) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listingKeyPrefix+string(plan)); err != nil {
		s.logger.Warn("failed to invalidate task listing cache",
			zap.String("plan_type", string(plan)),
			zap.Error(err))
	}
}

func (s *service) clearListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ClearByPattern(ctx, listingKeyPrefix+"*"); err != nil {
		s.logger.Warn("failed to clear task listing cache", zap.Error(err))
	}
}
