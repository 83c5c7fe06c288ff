package dto

import (
	"time"

	"github.com/google/uuid"
)

// AdminUserResponse represents a user with wallet totals in the admin listing
// @Description User account with wallet balances, visible to admins only
type AdminUserResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	PlanType          string    `json:"planType"`
	WalletBalance     float64   `json:"walletBalance"`
	WalletTotalEarned float64   `json:"walletTotalEarned"`
	CreatedAt         time.Time `json:"createdAt"`
}

// UserListResponse represents a paginated admin listing of customer accounts
type UserListResponse struct {
	Users      []AdminUserResponse `json:"users"`
	TotalCount int64               `json:"totalCount"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
}

// UpdatePlanRequest represents the request body for changing a user's plan tier
type UpdatePlanRequest struct {
	PlanType string `json:"planType" binding:"required,oneof=basic standard premium vip"`
}
