package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/onlytoseef/earnshadowhub/internal/api/dto"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/pkg/logger"
)

var log = logger.NewLogger()

// TaskHandler handles HTTP requests for task catalog operations
type TaskHandler struct {
	service task.Service
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(service task.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

func taskErrorStatus(err error) int {
	var vErr *task.ValidationError
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrInvalidInput), errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrHasSubmissions):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// CreateTask godoc
// @Summary Create a new task
// @Description Create a new paid task offer (admin only)
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse "Task created successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	input := task.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		WebsiteURL:     req.WebsiteURL,
		WebsiteName:    req.WebsiteName,
		PaymentPerTask: req.PaymentPerTask,
		PlanType:       task.PlanType(req.PlanType),
		Category:       task.Category(req.Category),
		EstimatedTime:  req.EstimatedTime,
		Requirements:   req.Requirements,
		Instructions:   req.Instructions,
		MaxCompletions: req.MaxCompletions,
		ExpiresAt:      req.ExpiresAt,
		Priority:       task.Priority(req.Priority),
		IsActive:       req.IsActive,
		CreatedBy:      userID,
	}
	if input.Priority == "" {
		input.Priority = task.PriorityMedium
	}

	created, err := h.service.CreateTask(c.Request.Context(), input)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(created)})
}

// GetTask godoc
// @Summary Get a task by ID
// @Description Get a task with its per-status submission counts
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 200 {object} dto.TaskResponse "Task details retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid task ID"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	t, err := h.service.GetTask(c.Request.Context(), id)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskWithStatsToResponse(t)})
}

// ListTasks godoc
// @Summary List tasks
// @Description Get a filtered, paginated list of tasks with submission stats (admin only)
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planType query string false "Filter by plan tier"
// @Param category query string false "Filter by category"
// @Param isActive query bool false "Filter by active flag"
// @Param search query string false "Search in title and description"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Tasks per page" default(10)
// @Success 200 {object} dto.TaskListResponse "List of tasks retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid request parameters"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var req dto.TaskFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := task.TaskFilter{
		IsActive:  req.IsActive,
		Search:    req.Search,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.PlanType != "" {
		plan := task.PlanType(req.PlanType)
		filter.PlanType = &plan
	}
	if req.Category != "" {
		cat := task.Category(req.Category)
		filter.Category = &cat
	}
	if req.CreatedBy != "" {
		creator, err := uuid.Parse(req.CreatedBy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator ID"})
			return
		}
		filter.CreatedBy = &creator
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	tasks, total, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, TaskWithStatsToResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.TaskListResponse{
		Tasks:      responses,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}})
}

// UpdateTask godoc
// @Summary Update a task
// @Description Update task fields; system-managed fields cannot be set
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Param task body dto.UpdateTaskRequest true "Task update request"
// @Success 200 {object} dto.TaskResponse "Task updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := task.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		WebsiteURL:     req.WebsiteURL,
		WebsiteName:    req.WebsiteName,
		PaymentPerTask: req.PaymentPerTask,
		EstimatedTime:  req.EstimatedTime,
		Requirements:   req.Requirements,
		Instructions:   req.Instructions,
		MaxCompletions: req.MaxCompletions,
		ExpiresAt:      req.ExpiresAt,
		IsActive:       req.IsActive,
	}
	if req.PlanType != nil {
		plan := task.PlanType(*req.PlanType)
		input.PlanType = &plan
	}
	if req.Category != nil {
		cat := task.Category(*req.Category)
		input.Category = &cat
	}
	if req.Priority != nil {
		prio := task.Priority(*req.Priority)
		input.Priority = &prio
	}

	updated, err := h.service.UpdateTask(c.Request.Context(), id, input)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// DeleteTask godoc
// @Summary Delete a task
// @Description Delete a task, or deactivate it when submissions reference it
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 200 {object} dto.DeleteTaskResponse "Delete outcome"
// @Failure 400 {object} map[string]string "Invalid task ID"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	outcome, err := h.service.DeleteTask(c.Request.Context(), id)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	resp := dto.DeleteTaskResponse{
		Deleted:     outcome.Deleted,
		Deactivated: outcome.Deactivated,
	}
	if outcome.Deactivated {
		resp.Message = "task has submissions and was deactivated instead of deleted"
	} else {
		resp.Message = "task deleted"
	}

	log.Info("task delete handled",
		zap.String("task_id", id.String()),
		zap.Bool("deactivated", outcome.Deactivated))

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// TasksByPlan godoc
// @Summary List tasks for a plan tier
// @Description Get all tasks of the given plan tier, optionally filtered by active flag (admin only)
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planType path string true "Plan tier" Enums(basic, standard, premium, vip)
// @Param isActive query bool false "Filter by active flag"
// @Success 200 {object} dto.PlanTasksResponse "Tasks for the plan tier"
// @Failure 400 {object} map[string]string "Invalid plan tier"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/tasks/plan/{planType} [get]
func (h *TaskHandler) TasksByPlan(c *gin.Context) {
	plan := task.PlanType(c.Param("planType"))
	if !plan.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan type"})
		return
	}

	var isActive *bool
	if raw, ok := c.GetQuery("isActive"); ok {
		active := raw == "true"
		isActive = &active
	}

	tasks, err := h.service.TasksByPlan(c.Request.Context(), plan, isActive)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, TaskToResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.PlanTasksResponse{
		Tasks:    responses,
		PlanType: string(plan),
		Count:    len(responses),
	}})
}

// PlanTypes godoc
// @Summary List plan tiers
// @Description Get the fixed set of subscription plan tiers
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} []string "Plan tiers"
// @Router /api/tasks/plan-types [get]
func (h *TaskHandler) PlanTypes(c *gin.Context) {
	plans := task.PlanTypes()
	names := make([]string, 0, len(plans))
	for _, p := range plans {
		names = append(names, string(p))
	}
	c.JSON(http.StatusOK, gin.H{"data": names})
}

// Categories godoc
// @Summary List task categories
// @Description Get the fixed set of task categories
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} []string "Task categories"
// @Router /api/tasks/categories [get]
func (h *TaskHandler) Categories(c *gin.Context) {
	categories := task.Categories()
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, string(cat))
	}
	c.JSON(http.StatusOK, gin.H{"data": names})
}

// AvailableTasks godoc
// @Summary List tasks available to the authenticated user
// @Description Get active, unexpired, uncapped tasks for the user's plan tier that the user has not already started
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AvailableTasksResponse "Available tasks retrieved successfully"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/tasks/available [get]
func (h *TaskHandler) AvailableTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	tasks, plan, err := h.service.AvailableForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, TaskToResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.AvailableTasksResponse{
		Tasks:    responses,
		PlanType: string(plan),
		Count:    len(responses),
	}})
}
