package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onlytoseef/earnshadowhub/internal/api/dto"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
	"github.com/onlytoseef/earnshadowhub/internal/domain/user"
	"github.com/onlytoseef/earnshadowhub/internal/domain/wallet"
)

// WalletHandler handles HTTP requests for wallet operations
type WalletHandler struct {
	service wallet.Service
}

// NewWalletHandler creates a new WalletHandler instance
func NewWalletHandler(service wallet.Service) *WalletHandler {
	return &WalletHandler{service: service}
}

func walletErrorStatus(err error) int {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrBelowMinWithdrawal):
		return http.StatusBadRequest
	case errors.Is(err, wallet.ErrInsufficientBalance):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// GetWallet godoc
// @Summary Get the authenticated user's wallet
// @Description Get wallet balance, lifetime earnings, and recent transactions
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.WalletResponse "Wallet retrieved successfully"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	info, err := h.service.Info(c.Request.Context(), userID)
	if err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	txs := make([]dto.TransactionResponse, 0, len(info.Transactions))
	for i := range info.Transactions {
		txs = append(txs, TransactionToResponse(&info.Transactions[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.WalletResponse{
		Balance:      info.Balance,
		TotalEarned:  info.TotalEarned,
		Transactions: txs,
	}})
}

// RequestWithdrawal godoc
// @Summary Request a withdrawal
// @Description Request a withdrawal from the wallet balance; the amount is held immediately
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.WithdrawalRequest true "Withdrawal amount"
// @Success 201 {object} dto.TransactionResponse "Withdrawal requested"
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 409 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/wallet/withdrawals [post]
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.RequestWithdrawal(c.Request.Context(), userID, req.Amount)
	if err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": TransactionToResponse(tx)})
}

// ListWithdrawals godoc
// @Summary List the authenticated user's withdrawals
// @Description Get the user's withdrawal history, newest first
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TransactionResponse "Withdrawals retrieved successfully"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/wallet/withdrawals [get]
func (h *WalletHandler) ListWithdrawals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	txs, err := h.service.Withdrawals(c.Request.Context(), userID)
	if err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		responses = append(responses, TransactionToResponse(&txs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}
