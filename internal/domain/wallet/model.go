package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TypeCredit     TransactionType = "credit"
	TypeWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// MinWithdrawal is the smallest amount a user may withdraw, in dollars.
const MinWithdrawal = 10.0

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrBelowMinWithdrawal  = errors.New("withdrawal amount is below the minimum")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Transaction is one wallet ledger entry: a task-completion credit or a
// withdrawal request. Entries are append-only.
type Transaction struct {
	ID     uuid.UUID         `json:"id" gorm:"type:uuid;primary_key"`
	UserID uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index:idx_wallet_tx_user"`
	Type   TransactionType   `json:"type" gorm:"not null"`
	Status TransactionStatus `json:"status" gorm:"not null;default:'completed'"`
	Amount float64           `json:"amount" gorm:"not null"`
	Memo   string            `json:"memo,omitempty" gorm:"size:200"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "wallet_transactions"
}

// BeforeCreate is called before creating a new transaction record
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Info is a user's wallet summary.
type Info struct {
	Balance      float64       `json:"balance"`
	TotalEarned  float64       `json:"total_earned"`
	Transactions []Transaction `json:"transactions"`
}
