package wallet

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/onlytoseef/earnshadowhub/internal/domain/user"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/persistence/postgres/connection"
)

// Service owns every wallet mutation. The task lifecycle core reaches it
// only through the Credit method (the payout trigger).
type Service interface {
	// Credit adds earnings to a user's balance and total earned, records a
	// ledger entry, and returns the transaction reference. Implements
	// submission.Payout.
	Credit(ctx context.Context, userID uuid.UUID, amount float64, memo string) (string, error)

	Info(ctx context.Context, userID uuid.UUID) (*Info, error)
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount float64) (*Transaction, error)
	Withdrawals(ctx context.Context, userID uuid.UUID) ([]Transaction, error)
}

type service struct {
	db     *connection.Database
	logger *zap.Logger
}

func NewService(db *connection.Database, logger *zap.Logger) Service {
	return &service{db: db, logger: logger}
}

func (s *service) Credit(ctx context.Context, userID uuid.UUID, amount float64, memo string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	tx := Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Type:   TypeCredit,
		Status: StatusCompleted,
		Amount: amount,
		Memo:   memo,
	}

	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		// Atomic in-place increments; never read-modify-write the balance
		result := dbtx.Model(&user.User{}).
			Where("id = ?", userID).
			UpdateColumns(map[string]interface{}{
				"wallet_balance":      gorm.Expr("wallet_balance + ?", amount),
				"wallet_total_earned": gorm.Expr("wallet_total_earned + ?", amount),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return user.ErrUserNotFound
		}
		return dbtx.Create(&tx).Error
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("wallet credited",
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount),
		zap.String("transaction_id", tx.ID.String()))

	return tx.ID.String(), nil
}

func (s *service) Info(ctx context.Context, userID uuid.UUID) (*Info, error) {
	var u user.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	var txs []Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}

	return &Info{
		Balance:      u.WalletBalance,
		TotalEarned:  u.WalletTotalEarned,
		Transactions: txs,
	}, nil
}

func (s *service) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount float64) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount < MinWithdrawal {
		return nil, ErrBelowMinWithdrawal
	}

	tx := Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Type:   TypeWithdrawal,
		Status: StatusPending,
		Amount: amount,
	}

	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		// Conditional decrement: the balance guard lives in the WHERE
		// clause so concurrent withdrawals cannot overdraw.
		result := dbtx.Model(&user.User{}).
			Where("id = ? AND wallet_balance >= ?", userID, amount).
			UpdateColumn("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		return dbtx.Create(&tx).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal requested",
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount))

	return &tx, nil
}

func (s *service) Withdrawals(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	var txs []Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, TypeWithdrawal).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}
