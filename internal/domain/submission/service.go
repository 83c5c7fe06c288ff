package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
)

// Payout credits a user's wallet when a submission is approved. It returns a
// transaction reference. The lifecycle core holds no wallet storage details.
type Payout interface {
	Credit(ctx context.Context, userID uuid.UUID, amount float64, memo string) (string, error)
}

// Notifier emits realtime submission events. Implementations are best-effort:
// a failed emit must never fail the underlying operation, so the methods do
// not return errors.
type Notifier interface {
	SubmissionPending(ctx context.Context, submissionID, userID, taskID uuid.UUID)
	SubmissionApproved(ctx context.Context, submissionID, userID, taskID uuid.UUID)
	SubmissionRejected(ctx context.Context, submissionID, userID, taskID uuid.UUID)
}

// Catalog is the slice of the task repository the ledger needs.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	IncrementCompletions(ctx context.Context, id uuid.UUID) error
}

// RequestMeta is the audit context captured when a task is started.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// ReviewInput is the payload of a task submission.
type ReviewInput struct {
	Rating      *int
	Comment     string
	Screenshots []string
	TimeSpent   *int
}

// ApproveResult reports the outcome of an approval, including the payout
// reference when the wallet credit succeeded.
type ApproveResult struct {
	Submission *Submission
	Earnings   float64
	PayoutRef  string
}

type Service interface {
	StartTask(ctx context.Context, userID, taskID uuid.UUID, meta RequestMeta) (*Submission, error)
	SubmitReview(ctx context.Context, userID, taskID uuid.UUID, input ReviewInput) (*Submission, error)
	ListUserSubmissions(ctx context.Context, userID uuid.UUID, filter Filter) ([]UserSubmission, int64, map[string]StatusStat, error)
	ListPending(ctx context.Context, filter PendingFilter) ([]ReviewItem, int64, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*ReviewItem, error)
	Approve(ctx context.Context, id uuid.UUID, adminNotes string) (*ApproveResult, error)
	Reject(ctx context.Context, id uuid.UUID, reason, adminNotes string) (*Submission, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	payout   Payout
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, catalog Catalog, payout Payout, notifier Notifier, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		catalog:  catalog,
		payout:   payout,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) StartTask(ctx context.Context, userID, taskID uuid.UUID, meta RequestMeta) (*Submission, error) {
	t, err := s.catalog.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, task.ErrTaskNotFound
	}

	if _, err := s.repo.FindByUserAndTask(ctx, userID, taskID); err == nil {
		return nil, ErrAlreadyAssigned
	} else if !errors.Is(err, ErrSubmissionNotFound) {
		return nil, err
	}

	now := s.now()
	sub := &Submission{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    taskID,
		Status:    StatusInProgress,
		StartedAt: &now,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	// The unique index on (user_id, task_id) closes the race the pre-check
	// above leaves open.
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("task started",
		zap.String("submission_id", sub.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("task_id", taskID.String()))

	return sub, nil
}

func (s *service) SubmitReview(ctx context.Context, userID, taskID uuid.UUID, input ReviewInput) (*Submission, error) {
	comment := strings.TrimSpace(input.Comment)
	if len(comment) < MinCommentLength {
		return nil, ErrCommentTooShort
	}
	if input.Rating != nil && (*input.Rating < MinRating || *input.Rating > MaxRating) {
		return nil, ErrInvalidRating
	}

	// Scoped lookup: wrong owner and wrong state are both "not found" so
	// existence is not leaked across users.
	sub, err := s.repo.FindByUserAndTaskInStatus(ctx, userID, taskID, StatusInProgress)
	if err != nil {
		if errors.Is(err, ErrSubmissionNotFound) {
			return nil, ErrNotInProgress
		}
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(ReviewWindow)
	updates := map[string]interface{}{
		"status":             StatusPending,
		"submitted_at":       now,
		"expires_at":         expiresAt,
		"review_comment":     comment,
		"review_screenshots": datatypes.NewJSONSlice(input.Screenshots),
	}
	if input.Rating != nil {
		updates["review_rating"] = *input.Rating
	}
	if input.TimeSpent != nil {
		updates["review_time_spent"] = *input.TimeSpent
	}

	matched, err := s.repo.UpdateWhereStatus(ctx, sub.ID, StatusInProgress, updates)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrNotInProgress
	}

	updated, err := s.repo.FindByID(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.SubmissionPending(ctx, updated.ID, userID, taskID)

	s.logger.Info("task review submitted",
		zap.String("submission_id", updated.ID.String()),
		zap.Time("expires_at", expiresAt))

	return updated, nil
}

func (s *service) ListUserSubmissions(ctx context.Context, userID uuid.UUID, filter Filter) ([]UserSubmission, int64, map[string]StatusStat, error) {
	subs, total, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, nil, err
	}
	stats, err := s.repo.StatsForUser(ctx, userID)
	if err != nil {
		return nil, 0, nil, err
	}
	return subs, total, stats, nil
}

func (s *service) ListPending(ctx context.Context, filter PendingFilter) ([]ReviewItem, int64, error) {
	// Demand-driven sweep: expire overdue submissions before presenting the
	// queue so no admin acts on a stale record.
	if _, err := s.ExpireStale(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.FindPending(ctx, filter)
}

func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*ReviewItem, error) {
	return s.repo.FindDetail(ctx, id)
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, adminNotes string) (*ApproveResult, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sub.Status, StatusApproved) {
		return nil, ErrNotPending
	}

	// Earnings are the task's payment at approval time, not submission time.
	t, err := s.catalog.FindByID(ctx, sub.TaskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":       StatusApproved,
		"reviewed_at":  now,
		"completed_at": now,
		"earnings":     t.PaymentPerTask,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}

	matched, err := s.repo.UpdateWhereStatus(ctx, id, StatusPending, updates)
	if err != nil {
		return nil, err
	}
	if !matched {
		// Lost the race against another approver or the sweeper
		return nil, ErrNotPending
	}

	if err := s.catalog.IncrementCompletions(ctx, sub.TaskID); err != nil {
		s.logger.Error("failed to increment task completions",
			zap.String("task_id", sub.TaskID.String()),
			zap.Error(err))
	}

	// The approval is committed before the wallet credit. A failed credit
	// leaves the submission approved and is flagged for manual follow-up
	// rather than rolled back.
	payoutRef, err := s.payout.Credit(ctx, sub.UserID, t.PaymentPerTask, "Task completion: "+t.Title)
	if err != nil {
		s.logger.Error("wallet credit failed after approval",
			zap.String("submission_id", id.String()),
			zap.String("user_id", sub.UserID.String()),
			zap.Float64("amount", t.PaymentPerTask),
			zap.Error(err))
		_, _ = s.repo.UpdateWhereStatus(ctx, id, StatusApproved, map[string]interface{}{
			"admin_notes": strings.TrimSpace(adminNotes + " [payout failed, manual credit required]"),
		})
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.SubmissionApproved(ctx, updated.ID, updated.UserID, updated.TaskID)

	s.logger.Info("submission approved",
		zap.String("submission_id", id.String()),
		zap.Float64("earnings", updated.Earnings))

	return &ApproveResult{
		Submission: updated,
		Earnings:   updated.Earnings,
		PayoutRef:  payoutRef,
	}, nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, reason, adminNotes string) (*Submission, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sub.Status, StatusRejected) {
		return nil, ErrNotPending
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":           StatusRejected,
		"reviewed_at":      now,
		"earnings":         0,
		"rejection_reason": reason,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}

	matched, err := s.repo.UpdateWhereStatus(ctx, id, StatusPending, updates)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrNotPending
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.SubmissionRejected(ctx, updated.ID, updated.UserID, updated.TaskID)

	s.logger.Info("submission rejected",
		zap.String("submission_id", id.String()),
		zap.String("reason", reason))

	return updated, nil
}

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("expired stale pending submissions", zap.Int64("count", count))
	}
	return count, nil
}
