package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/onlytoseef/earnshadowhub/internal/api/dto"
	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/internal/domain/user"
)

// UserHandler handles admin HTTP requests over customer accounts
type UserHandler struct {
	repo user.UserRepository
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(repo user.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

func userErrorStatus(err error) int {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrInvalidPlan):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ListUsers godoc
// @Summary List customer accounts
// @Description Get a paginated list of customers with their wallet balances (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Users per page" default(10)
// @Success 200 {object} dto.UserListResponse "Users retrieved successfully"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	users, total, err := h.repo.ListCustomers(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, UserToAdminResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.UserListResponse{
		Users:      responses,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}})
}

// UpdateUserPlan godoc
// @Summary Change a user's plan tier
// @Description Move a user to a different subscription plan tier (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID" format(uuid)
// @Param body body dto.UpdatePlanRequest true "New plan tier"
// @Success 200 {object} dto.AdminUserResponse "Plan updated"
// @Failure 400 {object} map[string]string "Invalid user ID or plan tier"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/users/{id}/plan [patch]
func (h *UserHandler) UpdateUserPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.repo.UpdatePlan(c.Request.Context(), id, task.PlanType(req.PlanType)); err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	updated, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(userErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	log.Info("user plan updated",
		zap.String("user_id", id.String()),
		zap.String("plan_type", req.PlanType))

	c.JSON(http.StatusOK, gin.H{"data": UserToAdminResponse(updated)})
}
