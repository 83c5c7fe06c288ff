package handlers

import (
	"github.com/onlytoseef/earnshadowhub/internal/api/dto"
	"github.com/onlytoseef/earnshadowhub/internal/domain/submission"
	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/internal/domain/user"
	"github.com/onlytoseef/earnshadowhub/internal/domain/wallet"
)

// TaskToResponse converts a task model to its API representation
func TaskToResponse(t *task.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		WebsiteURL:         t.WebsiteURL,
		WebsiteName:        t.WebsiteName,
		PaymentPerTask:     t.PaymentPerTask,
		PlanType:           string(t.PlanType),
		Category:           string(t.Category),
		EstimatedTime:      t.EstimatedTime,
		Requirements:       t.Requirements,
		Instructions:       t.Instructions,
		MaxCompletions:     t.MaxCompletions,
		CurrentCompletions: t.CurrentCompletions,
		ExpiresAt:          t.ExpiresAt,
		Priority:           string(t.Priority),
		IsActive:           t.IsActive,
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// TaskWithStatsToResponse converts a task plus its submission counts
func TaskWithStatsToResponse(t *task.TaskWithStats) dto.TaskResponse {
	resp := TaskToResponse(&t.Task)
	resp.CompletionStats = t.CompletionStats
	return resp
}

// SubmissionToResponse converts a submission model to its API representation
func SubmissionToResponse(s *submission.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		TaskID:          s.TaskID,
		Status:          string(s.Status),
		Earnings:        s.Earnings,
		StartedAt:       s.StartedAt,
		SubmittedAt:     s.SubmittedAt,
		ReviewedAt:      s.ReviewedAt,
		CompletedAt:     s.CompletedAt,
		ExpiresAt:       s.ExpiresAt,
		Rating:          s.Review.Rating,
		Comment:         s.Review.Comment,
		Screenshots:     s.Review.Screenshots,
		TimeSpent:       s.Review.TimeSpent,
		RejectionReason: s.RejectionReason,
		AdminNotes:      s.AdminNotes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// UserSubmissionToResponse attaches the joined task to a submission response
func UserSubmissionToResponse(us *submission.UserSubmission) dto.SubmissionResponse {
	resp := SubmissionToResponse(&us.Submission)
	if us.Task != nil {
		taskResp := TaskToResponse(us.Task)
		resp.Task = &taskResp
	}
	return resp
}

// ReviewItemToResponse attaches task and submitter details for the admin view
func ReviewItemToResponse(item *submission.ReviewItem) dto.SubmissionResponse {
	resp := SubmissionToResponse(&item.Submission)
	if item.Task != nil {
		taskResp := TaskToResponse(item.Task)
		resp.Task = &taskResp
	}
	if item.User != nil {
		resp.User = UserToSummary(item.User)
	}
	return resp
}

// UserToSummary converts a user model to its reviewer-facing summary
func UserToSummary(u *user.User) *dto.UserSummary {
	return &dto.UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		PlanType: string(u.PlanType),
	}
}

// UserToAdminResponse converts a user model to the admin listing view
func UserToAdminResponse(u *user.User) dto.AdminUserResponse {
	return dto.AdminUserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		PlanType:          string(u.PlanType),
		WalletBalance:     u.WalletBalance,
		WalletTotalEarned: u.WalletTotalEarned,
		CreatedAt:         u.CreatedAt,
	}
}

// StatsToResponse converts per-status aggregates to their API representation
func StatsToResponse(stats map[string]submission.StatusStat) map[string]dto.StatusStatDTO {
	result := make(map[string]dto.StatusStatDTO, len(stats))
	for status, stat := range stats {
		result[status] = dto.StatusStatDTO{Count: stat.Count, Earnings: stat.Earnings}
	}
	return result
}

// TransactionToResponse converts a wallet ledger entry to its API representation
func TransactionToResponse(t *wallet.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        t.ID,
		Type:      string(t.Type),
		Status:    string(t.Status),
		Amount:    t.Amount,
		Memo:      t.Memo,
		CreatedAt: t.CreatedAt,
	}
}
