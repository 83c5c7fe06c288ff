package dto

import (
	"time"

	"github.com/google/uuid"
)

// WalletResponse represents a user's wallet summary
// @Description Wallet balance, lifetime earnings, and recent transactions
type WalletResponse struct {
	Balance      float64               `json:"balance"`
	TotalEarned  float64               `json:"totalEarned"`
	Transactions []TransactionResponse `json:"transactions"`
}

// TransactionResponse represents one wallet ledger entry
type TransactionResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// WithdrawalRequest represents the request body for requesting a withdrawal
type WithdrawalRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}
