package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/onlytoseef/earnshadowhub/internal/api/dto"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
	"github.com/onlytoseef/earnshadowhub/internal/domain/submission"
	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/storage"
)

// SubmissionHandler handles HTTP requests for the task submission lifecycle
type SubmissionHandler struct {
	service  submission.Service
	evidence *storage.EvidenceStore
}

// NewSubmissionHandler creates a new SubmissionHandler instance
func NewSubmissionHandler(service submission.Service, evidence *storage.EvidenceStore) *SubmissionHandler {
	return &SubmissionHandler{service: service, evidence: evidence}
}

func submissionErrorStatus(err error) int {
	switch {
	case errors.Is(err, submission.ErrSubmissionNotFound),
		errors.Is(err, submission.ErrNotInProgress),
		errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, submission.ErrAlreadyAssigned),
		errors.Is(err, submission.ErrNotPending),
		errors.Is(err, submission.ErrCommentTooShort),
		errors.Is(err, submission.ErrInvalidRating),
		errors.Is(err, submission.ErrReasonRequired),
		errors.Is(err, submission.ErrInvalidInput),
		errors.Is(err, storage.ErrTooManyFiles),
		errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// StartTask godoc
// @Summary Start a task
// @Description Claim a task for the authenticated user; each user may attempt a task at most once
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 201 {object} dto.SubmissionResponse "Task started successfully"
// @Failure 400 {object} map[string]string "Invalid task ID or task already assigned"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/tasks/{id}/start [post]
func (h *SubmissionHandler) StartTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	meta := submission.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	sub, err := h.service.StartTask(c.Request.Context(), userID, taskID, meta)
	if err != nil {
		c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": SubmissionToResponse(sub)})
}

// SubmitReview godoc
// @Summary Submit completed task evidence
// @Description Submit review evidence for an in-progress task as a multipart form; screenshots go in the "screenshots" file field
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Param comment formData string true "Review comment, at least 20 characters"
// @Param rating formData int false "Rating from 1 to 5"
// @Param timeSpent formData int false "Minutes spent on the task"
// @Param screenshots formData file false "Evidence screenshots"
// @Success 200 {object} dto.SubmissionResponse "Submission moved to pending review"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Task not found or not in progress"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/tasks/{id}/submit [post]
func (h *SubmissionHandler) SubmitReview(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var screenshots []string
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		files := form.File["screenshots"]
		if len(files) > 0 {
			screenshots, err = h.evidence.SaveAll(files)
			if err != nil {
				c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
		}
	}

	input := submission.ReviewInput{
		Rating:      req.Rating,
		Comment:     req.Comment,
		Screenshots: screenshots,
		TimeSpent:   req.TimeSpent,
	}

	sub, err := h.service.SubmitReview(c.Request.Context(), userID, taskID, input)
	if err != nil {
		c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": SubmissionToResponse(sub)})
}

// ListMySubmissions godoc
// @Summary List the authenticated user's submissions
// @Description Get a paginated list of the user's submissions with per-status stats
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Submissions per page" default(10)
// @Success 200 {object} dto.SubmissionListResponse "Submissions retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid request parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/submissions [get]
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.SubmissionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := submission.Filter{
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Status != "" {
		status := submission.Status(req.Status)
		filter.Status = &status
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	subs, total, stats, err := h.service.ListUserSubmissions(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		responses = append(responses, UserSubmissionToResponse(&subs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.SubmissionListResponse{
		Submissions: responses,
		TotalCount:  total,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		Stats:       StatsToResponse(stats),
	}})
}

// ListPending godoc
// @Summary List pending submissions
// @Description Get the admin review queue, oldest submitted first; overdue submissions are expired before listing
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planType query string false "Filter by task plan tier"
// @Param category query string false "Filter by task category"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Submissions per page" default(10)
// @Success 200 {object} dto.SubmissionListResponse "Pending submissions retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid request parameters"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/submissions/pending [get]
func (h *SubmissionHandler) ListPending(c *gin.Context) {
	var req dto.PendingFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := submission.PendingFilter{
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
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	items, total, err := h.service.ListPending(c.Request.Context(), filter)
	if err != nil {
		c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.SubmissionResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ReviewItemToResponse(&items[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.SubmissionListResponse{
		Submissions: responses,
		TotalCount:  total,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}})
}

// GetSubmission godoc
// @Summary Get a submission by ID
// @Description Get full submission detail including task and submitter (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID" format(uuid)
// @Success 200 {object} dto.SubmissionResponse "Submission retrieved successfully"
// @Failure 400 {object} map[string]string "Invalid submission ID"
// @Failure 404 {object} map[string]string "Submission not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
		return
	}

	item, err := h.service.GetDetail(c.Request.Context(), id)
	if err != nil {
		c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ReviewItemToResponse(item)})
}

// ApproveSubmission godoc
// @Summary Approve a pending submission
// @Description Approve a submission, credit the submitter's wallet, and bump the task's completion count
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID" format(uuid)
// @Param body body dto.ApproveSubmissionRequest false "Optional admin notes"
// @Success 200 {object} dto.ApproveSubmissionResponse "Submission approved"
// @Failure 400 {object} map[string]string "Invalid submission ID or submission is not pending"
// @Failure 404 {object} map[string]string "Submission not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/submissions/{id}/approve [patch]
func (h *SubmissionHandler) ApproveSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
		return
	}

	var req dto.ApproveSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Approve(c.Request.Context(), id, req.AdminNotes)
	if err != nil {
		c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ApproveSubmissionResponse{
		Submission: SubmissionToResponse(result.Submission),
		Earnings:   result.Earnings,
		PayoutRef:  result.PayoutRef,
	}})
}

// RejectSubmission godoc
// @Summary Reject a pending submission
// @Description Reject a submission with a mandatory reason; no earnings are credited
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID" format(uuid)
// @Param body body dto.RejectSubmissionRequest true "Rejection reason and optional admin notes"
// @Success 200 {object} dto.SubmissionResponse "Submission rejected"
// @Failure 400 {object} map[string]string "Missing reason or submission is not pending"
// @Failure 404 {object} map[string]string "Submission not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/admin/submissions/{id}/reject [patch]
func (h *SubmissionHandler) RejectSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
		return
	}

	var req dto.RejectSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.service.Reject(c.Request.Context(), id, req.Reason, req.AdminNotes)
	if err != nil {
		c.JSON(submissionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": SubmissionToResponse(sub)})
}
