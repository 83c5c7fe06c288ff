package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/persistence/postgres/connection"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid input")
)

// TaskFilter defines filtering options for the admin task list
type TaskFilter struct {
	PlanType  *PlanType
	Category  *Category
	IsActive  *bool
	CreatedBy *uuid.UUID
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	FindByPlan(ctx context.Context, plan PlanType, isActive *bool) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementCompletions bumps current_completions atomically and
	// deactivates the task once its cap is reached. Never read-modify-write.
	IncrementCompletions(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

var sortableColumns = map[string]string{
	"created_at":       "created_at",
	"updated_at":       "updated_at",
	"payment_per_task": "payment_per_task",
	"priority":         "priority",
	"title":            "title",
}

func (r *taskRepository) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var tasks []Task
	var total int64

	query := r.db.WithContext(ctx).Model(&Task{})

	if filter.PlanType != nil {
		query = query.Where("plan_type = ?", *filter.PlanType)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR website_name ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortableColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}
	query = query.Order(column + " " + direction)

	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) FindByPlan(ctx context.Context, plan PlanType, isActive *bool) ([]Task, error) {
	var tasks []Task
	query := r.db.WithContext(ctx).Where("plan_type = ?", plan)
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	err := query.Order("priority DESC, created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(ctx context.Context, task *Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) IncrementCompletions(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"current_completions": gorm.Expr("current_completions + 1"),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	// Deactivate once the cap is reached so the availability predicate and
	// the stored flag agree even under concurrent approvals.
	return r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND max_completions IS NOT NULL AND current_completions >= max_completions", id).
		UpdateColumn("is_active", false).Error
}
