package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/onlytoseef/earnshadowhub/internal/api/handlers"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
)

// WalletRoutes handles the setup of wallet routes
type WalletRoutes struct {
	handler   *handlers.WalletHandler
	jwtSecret string
}

// NewWalletRoutes creates a new WalletRoutes instance
func NewWalletRoutes(handler *handlers.WalletHandler, jwtSecret string) *WalletRoutes {
	return &WalletRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all wallet routes
func (r *WalletRoutes) RegisterRoutes(router *gin.Engine) {
	wallet := router.Group("/api/wallet")
	wallet.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	wallet.GET("", r.handler.GetWallet)
	wallet.GET("/withdrawals", r.handler.ListWithdrawals)
	wallet.POST("/withdrawals", r.handler.RequestWithdrawal)
}
