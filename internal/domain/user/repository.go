package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/persistence/postgres/connection"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidPlan  = errors.New("invalid plan type")
)

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListCustomers(ctx context.Context, page, pageSize int) ([]User, int64, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan task.PlanType) error

	// PlanFor implements task.PlanResolver for the catalog.
	PlanFor(ctx context.Context, id uuid.UUID) (task.PlanType, error)
}

type userRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	result := r.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *userRepository) ListCustomers(ctx context.Context, page, pageSize int) ([]User, int64, error) {
	var users []User
	var total int64

	query := r.db.WithContext(ctx).Model(&User{}).Where("role = ?", RoleCustomer)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize <= 0 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan task.PlanType) error {
	if !plan.IsValid() {
		return ErrInvalidPlan
	}
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Update("plan_type", plan)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) PlanFor(ctx context.Context, id uuid.UUID) (task.PlanType, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user.PlanType == "" {
		return task.PlanBasic, nil
	}
	return user.PlanType, nil
}
