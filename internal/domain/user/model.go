package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User carries the attributes the task lifecycle core needs: role, plan tier,
// and the wallet balances that only the payout path may touch.
type User struct {
	ID       uuid.UUID     `json:"id" gorm:"type:uuid;primary_key"`
	Name     string        `json:"name" gorm:"not null;size:50"`
	Email    string        `json:"email" gorm:"not null;uniqueIndex"`
	Role     Role          `json:"role" gorm:"not null;default:'customer'"`
	PlanType task.PlanType `json:"plan_type" gorm:"not null;default:'basic';index:idx_user_plan"`

	// Wallet fields are mutated only through the wallet package, never
	// directly by the lifecycle core.
	WalletBalance     float64 `json:"wallet_balance" gorm:"not null;default:0"`
	WalletTotalEarned float64 `json:"wallet_total_earned" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BeforeCreate is called before creating a new user record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.PlanType == "" {
		u.PlanType = task.PlanBasic
	}
	return nil
}
