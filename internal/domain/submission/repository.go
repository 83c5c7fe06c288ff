package submission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/internal/domain/user"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/persistence/postgres/connection"
)

// Filter selects a user's own submissions.
type Filter struct {
	Status    *Status
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// PendingFilter selects the admin review queue, filtered through the joined task.
type PendingFilter struct {
	PlanType  *task.PlanType
	Category  *task.Category
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// UserSubmission pairs a submission with its task for user-facing listings.
type UserSubmission struct {
	Submission
	Task *task.Task `json:"task,omitempty"`
}

// ReviewItem is the full join an admin sees before deciding.
type ReviewItem struct {
	Submission
	Task *task.Task `json:"task,omitempty"`
	User *user.User `json:"user,omitempty"`
}

// StatusStat aggregates a user's submissions per status.
type StatusStat struct {
	Count    int64   `json:"count"`
	Earnings float64 `json:"earnings"`
}

// Repository defines persistence for the assignment ledger. Transition
// updates are status-guarded at the storage layer: the WHERE clause carries
// the expected current status so concurrent writers cannot double-process.
type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	FindByUserAndTask(ctx context.Context, userID, taskID uuid.UUID) (*Submission, error)
	FindByUserAndTaskInStatus(ctx context.Context, userID, taskID uuid.UUID, status Status) (*Submission, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter Filter) ([]UserSubmission, int64, error)
	FindPending(ctx context.Context, filter PendingFilter) ([]ReviewItem, int64, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*ReviewItem, error)

	// UpdateWhereStatus applies updates only if the record is still in the
	// expected status. Returns false when the guard did not match.
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, expected Status, updates map[string]interface{}) (bool, error)

	// ExpireStale transitions every pending submission past its review
	// window to expired in one guarded bulk update.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)

	StatsForUser(ctx context.Context, userID uuid.UUID) (map[string]StatusStat, error)

	// Gauge methods consumed by the task catalog.
	CountForTask(ctx context.Context, taskID uuid.UUID) (int64, error)
	StatusCountsForTask(ctx context.Context, taskID uuid.UUID) (map[string]int64, error)
	TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sub *Submission) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyAssigned
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	var sub Submission
	result := r.db.WithContext(ctx).First(&sub, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, result.Error
	}
	return &sub, nil
}

func (r *repository) FindByUserAndTask(ctx context.Context, userID, taskID uuid.UUID) (*Submission, error) {
	var sub Submission
	result := r.db.WithContext(ctx).
		First(&sub, "user_id = ? AND task_id = ?", userID, taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, result.Error
	}
	return &sub, nil
}

func (r *repository) FindByUserAndTaskInStatus(ctx context.Context, userID, taskID uuid.UUID, status Status) (*Submission, error) {
	var sub Submission
	result := r.db.WithContext(ctx).
		First(&sub, "user_id = ? AND task_id = ? AND status = ?", userID, taskID, status)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, result.Error
	}
	return &sub, nil
}

var submissionSortColumns = map[string]string{
	"created_at":   "created_at",
	"submitted_at": "submitted_at",
	"started_at":   "started_at",
	"earnings":     "earnings",
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID, filter Filter) ([]UserSubmission, int64, error) {
	var subs []Submission
	var total int64

	query := r.db.WithContext(ctx).Model(&Submission{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := submissionSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	err := query.Order(column + " " + direction).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}

	tasks, err := r.tasksByIDs(ctx, taskIDs(subs))
	if err != nil {
		return nil, 0, err
	}

	result := make([]UserSubmission, 0, len(subs))
	for _, s := range subs {
		result = append(result, UserSubmission{Submission: s, Task: tasks[s.TaskID]})
	}
	return result, total, nil
}

func (r *repository) FindPending(ctx context.Context, filter PendingFilter) ([]ReviewItem, int64, error) {
	var subs []Submission
	var total int64

	query := r.db.WithContext(ctx).Model(&Submission{}).
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("submissions.status = ?", StatusPending)

	if filter.PlanType != nil {
		query = query.Where("tasks.plan_type = ?", *filter.PlanType)
	}
	if filter.Category != nil {
		query = query.Where("tasks.category = ?", *filter.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Oldest-submitted-first by default, for fair review ordering
	column, ok := submissionSortColumns[filter.SortBy]
	if !ok {
		column = "submitted_at"
	}
	direction := "ASC"
	if filter.SortOrder == "desc" {
		direction = "DESC"
	}

	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	err := query.Select("submissions.*").
		Order("submissions." + column + " " + direction).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}

	return r.assembleReviewItems(ctx, subs, total)
}

func (r *repository) FindDetail(ctx context.Context, id uuid.UUID) (*ReviewItem, error) {
	sub, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, _, err := r.assembleReviewItems(ctx, []Submission{*sub}, 1)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, expected Status, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&Submission{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Submission{}).
		Where("status = ? AND expires_at < ?", StatusPending, now).
		Updates(map[string]interface{}{
			"status":           StatusExpired,
			"earnings":         0,
			"rejection_reason": ExpiredReason,
			"updated_at":       now,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) StatsForUser(ctx context.Context, userID uuid.UUID) (map[string]StatusStat, error) {
	var rows []struct {
		Status   string
		Count    int64
		Earnings float64
	}
	err := r.db.WithContext(ctx).Model(&Submission{}).
		Select("status, count(*) as count, COALESCE(SUM(earnings), 0) as earnings").
		Where("user_id = ?", userID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]StatusStat, len(rows))
	for _, row := range rows {
		stats[row.Status] = StatusStat{Count: row.Count, Earnings: row.Earnings}
	}
	return stats, nil
}

func (r *repository) CountForTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Submission{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

func (r *repository) StatusCountsForTask(ctx context.Context, taskID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&Submission{}).
		Select("status, count(*) as count").
		Where("task_id = ?", taskID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&Submission{}).
		Where("user_id = ?", userID).
		Pluck("task_id", &ids).Error
	return ids, err
}

func (r *repository) assembleReviewItems(ctx context.Context, subs []Submission, total int64) ([]ReviewItem, int64, error) {
	tasks, err := r.tasksByIDs(ctx, taskIDs(subs))
	if err != nil {
		return nil, 0, err
	}

	userIDs := make([]uuid.UUID, 0, len(subs))
	seen := make(map[uuid.UUID]struct{}, len(subs))
	for _, s := range subs {
		if _, ok := seen[s.UserID]; !ok {
			seen[s.UserID] = struct{}{}
			userIDs = append(userIDs, s.UserID)
		}
	}

	users := make(map[uuid.UUID]*user.User, len(userIDs))
	if len(userIDs) > 0 {
		var rows []user.User
		if err := r.db.WithContext(ctx).Find(&rows, "id IN ?", userIDs).Error; err != nil {
			return nil, 0, err
		}
		for i := range rows {
			users[rows[i].ID] = &rows[i]
		}
	}

	items := make([]ReviewItem, 0, len(subs))
	for _, s := range subs {
		items = append(items, ReviewItem{
			Submission: s,
			Task:       tasks[s.TaskID],
			User:       users[s.UserID],
		})
	}
	return items, total, nil
}

func (r *repository) tasksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*task.Task, error) {
	tasks := make(map[uuid.UUID]*task.Task, len(ids))
	if len(ids) == 0 {
		return tasks, nil
	}
	var rows []task.Task
	if err := r.db.WithContext(ctx).Find(&rows, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		tasks[rows[i].ID] = &rows[i]
	}
	return tasks, nil
}

func taskIDs(subs []Submission) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(subs))
	seen := make(map[uuid.UUID]struct{}, len(subs))
	for _, s := range subs {
		if _, ok := seen[s.TaskID]; !ok {
			seen[s.TaskID] = struct{}{}
			ids = append(ids, s.TaskID)
		}
	}
	return ids
}
