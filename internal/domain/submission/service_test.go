package submission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
)

type fakeRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*Submission
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{subs: make(map[uuid.UUID]*Submission)}
}

func (r *fakeRepo) Create(ctx context.Context, sub *Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.UserID == sub.UserID && existing.TaskID == sub.TaskID {
			return ErrAlreadyAssigned
		}
	}
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeRepo) FindByUserAndTask(ctx context.Context, userID, taskID uuid.UUID) (*Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.TaskID == taskID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, ErrSubmissionNotFound
}

func (r *fakeRepo) FindByUserAndTaskInStatus(ctx context.Context, userID, taskID uuid.UUID, status Status) (*Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.TaskID == taskID && sub.Status == status {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, ErrSubmissionNotFound
}

func (r *fakeRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter Filter) ([]UserSubmission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []UserSubmission
	for _, sub := range r.subs {
		if sub.UserID != userID {
			continue
		}
		if filter.Status != nil && sub.Status != *filter.Status {
			continue
		}
		out = append(out, UserSubmission{Submission: *sub})
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) FindPending(ctx context.Context, filter PendingFilter) ([]ReviewItem, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ReviewItem
	for _, sub := range r.subs {
		if sub.Status == StatusPending {
			out = append(out, ReviewItem{Submission: *sub})
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) FindDetail(ctx context.Context, id uuid.UUID) (*ReviewItem, error) {
	sub, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ReviewItem{Submission: *sub}, nil
}

func (r *fakeRepo) UpdateWhereStatus(ctx context.Context, id uuid.UUID, expected Status, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok || sub.Status != expected {
		return false, nil
	}
	applyUpdates(sub, updates)
	return true, nil
}

func (r *fakeRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, sub := range r.subs {
		if sub.Status == StatusPending && sub.ExpiresAt != nil && sub.ExpiresAt.Before(now) {
			sub.Status = StatusExpired
			sub.Earnings = 0
			sub.RejectionReason = ExpiredReason
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) StatsForUser(ctx context.Context, userID uuid.UUID) (map[string]StatusStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := make(map[string]StatusStat)
	for _, sub := range r.subs {
		if sub.UserID != userID {
			continue
		}
		s := stats[string(sub.Status)]
		s.Count++
		s.Earnings += sub.Earnings
		stats[string(sub.Status)] = s
	}
	return stats, nil
}

func (r *fakeRepo) CountForTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, sub := range r.subs {
		if sub.TaskID == taskID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) StatusCountsForTask(ctx context.Context, taskID uuid.UUID) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *fakeRepo) TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, sub := range r.subs {
		if sub.UserID == userID {
			ids = append(ids, sub.TaskID)
		}
	}
	return ids, nil
}

func applyUpdates(sub *Submission, updates map[string]interface{}) {
	for key, val := range updates {
		switch key {
		case "status":
			sub.Status = val.(Status)
		case "submitted_at":
			v := val.(time.Time)
			sub.SubmittedAt = &v
		case "expires_at":
			v := val.(time.Time)
			sub.ExpiresAt = &v
		case "reviewed_at":
			v := val.(time.Time)
			sub.ReviewedAt = &v
		case "completed_at":
			v := val.(time.Time)
			sub.CompletedAt = &v
		case "earnings":
			switch e := val.(type) {
			case float64:
				sub.Earnings = e
			case int:
				sub.Earnings = float64(e)
			}
		case "review_comment":
			sub.Review.Comment = val.(string)
		case "review_rating":
			v := val.(int)
			sub.Review.Rating = &v
		case "review_time_spent":
			v := val.(int)
			sub.Review.TimeSpent = &v
		case "review_screenshots":
			sub.Review.Screenshots = val.(datatypes.JSONSlice[string])
		case "rejection_reason":
			sub.RejectionReason = val.(string)
		case "admin_notes":
			sub.AdminNotes = val.(string)
		}
	}
}

type fakeCatalog struct {
	mu         sync.Mutex
	tasks      map[uuid.UUID]*task.Task
	increments map[uuid.UUID]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tasks:      make(map[uuid.UUID]*task.Task),
		increments: make(map[uuid.UUID]int),
	}
}

func (c *fakeCatalog) add(t *task.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[t.ID] = t
}

func (c *fakeCatalog) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (c *fakeCatalog) IncrementCompletions(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.increments[id]++
	return nil
}

type fakePayout struct {
	mu      sync.Mutex
	credits []float64
	fail    bool
}

func (p *fakePayout) Credit(ctx context.Context, userID uuid.UUID, amount float64, memo string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return "", assert.AnError
	}
	p.credits = append(p.credits, amount)
	return uuid.New().String(), nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	pending  int
	approved int
	rejected int
}

func (n *fakeNotifier) SubmissionPending(ctx context.Context, submissionID, userID, taskID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending++
}

func (n *fakeNotifier) SubmissionApproved(ctx context.Context, submissionID, userID, taskID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved++
}

func (n *fakeNotifier) SubmissionRejected(ctx context.Context, submissionID, userID, taskID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected++
}

type fixture struct {
	repo     *fakeRepo
	catalog  *fakeCatalog
	payout   *fakePayout
	notifier *fakeNotifier
	svc      *service
	task     *task.Task
	userID   uuid.UUID
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	catalog := newFakeCatalog()
	payout := &fakePayout{}
	notifier := &fakeNotifier{}

	tk := &task.Task{
		ID:             uuid.New(),
		Title:          "Visit example.com homepage",
		PaymentPerTask: 0.75,
		PlanType:       task.PlanBasic,
		IsActive:       true,
	}
	catalog.add(tk)

	svc := NewService(repo, catalog, payout, notifier, zap.NewNop()).(*service)

	f := &fixture{
		repo:     repo,
		catalog:  catalog,
		payout:   payout,
		notifier: notifier,
		svc:      svc,
		task:     tk,
		userID:   uuid.New(),
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func validReview() ReviewInput {
	return ReviewInput{
		Comment:     "Completed the task exactly as instructed, screenshots attached.",
		Screenshots: []string{"/uploads/screenshots/a.png"},
	}
}

func TestStartTask(t *testing.T) {
	f := newFixture(t)

	sub, err := f.svc.StartTask(context.Background(), f.userID, f.task.ID, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, sub.Status)
	require.NotNil(t, sub.StartedAt)
	assert.Equal(t, f.clock, *sub.StartedAt)
	assert.Equal(t, "10.0.0.1", sub.IPAddress)

	t.Run("second start of the same task is rejected", func(t *testing.T) {
		_, err := f.svc.StartTask(context.Background(), f.userID, f.task.ID, RequestMeta{})
		assert.ErrorIs(t, err, ErrAlreadyAssigned)
	})

	t.Run("restart after rejection is still blocked", func(t *testing.T) {
		sub.Status = StatusRejected
		f.repo.subs[sub.ID].Status = StatusRejected
		_, err := f.svc.StartTask(context.Background(), f.userID, f.task.ID, RequestMeta{})
		assert.ErrorIs(t, err, ErrAlreadyAssigned)
	})

	t.Run("inactive task cannot be started", func(t *testing.T) {
		f.task.IsActive = false
		_, err := f.svc.StartTask(context.Background(), uuid.New(), f.task.ID, RequestMeta{})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
		f.task.IsActive = true
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := f.svc.StartTask(context.Background(), f.userID, uuid.New(), RequestMeta{})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}

func TestSubmitReview(t *testing.T) {
	f := newFixture(t)
	started, err := f.svc.StartTask(context.Background(), f.userID, f.task.ID, RequestMeta{})
	require.NoError(t, err)

	t.Run("short comment leaves submission untouched", func(t *testing.T) {
		input := validReview()
		input.Comment = "too short"
		_, err := f.svc.SubmitReview(context.Background(), f.userID, f.task.ID, input)
		assert.ErrorIs(t, err, ErrCommentTooShort)

		unchanged, err := f.repo.FindByID(context.Background(), started.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, unchanged.Status)
		assert.Nil(t, unchanged.SubmittedAt)
	})

	t.Run("whitespace does not count toward comment length", func(t *testing.T) {
		input := validReview()
		input.Comment = "   short comment    "
		_, err := f.svc.SubmitReview(context.Background(), f.userID, f.task.ID, input)
		assert.ErrorIs(t, err, ErrCommentTooShort)
	})

	t.Run("rating outside bounds rejected", func(t *testing.T) {
		for _, rating := range []int{0, 6} {
			input := validReview()
			input.Rating = &rating
			_, err := f.svc.SubmitReview(context.Background(), f.userID, f.task.ID, input)
			assert.ErrorIs(t, err, ErrInvalidRating)
		}
	})

	t.Run("valid submit stamps pending and the review window", func(t *testing.T) {
		rating := 4
		input := validReview()
		input.Rating = &rating

		sub, err := f.svc.SubmitReview(context.Background(), f.userID, f.task.ID, input)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, sub.Status)
		require.NotNil(t, sub.SubmittedAt)
		require.NotNil(t, sub.ExpiresAt)
		assert.Equal(t, f.clock.Add(ReviewWindow), *sub.ExpiresAt)
		assert.Equal(t, 4, *sub.Review.Rating)
		assert.Equal(t, 1, f.notifier.pending)
	})

	t.Run("resubmit of a pending submission rejected", func(t *testing.T) {
		_, err := f.svc.SubmitReview(context.Background(), f.userID, f.task.ID, validReview())
		assert.ErrorIs(t, err, ErrNotInProgress)
	})

	t.Run("submit without prior start rejected", func(t *testing.T) {
		_, err := f.svc.SubmitReview(context.Background(), uuid.New(), f.task.ID, validReview())
		assert.ErrorIs(t, err, ErrNotInProgress)
	})
}

func submitPending(t *testing.T, f *fixture) *Submission {
	t.Helper()
	_, err := f.svc.StartTask(context.Background(), f.userID, f.task.ID, RequestMeta{})
	require.NoError(t, err)
	sub, err := f.svc.SubmitReview(context.Background(), f.userID, f.task.ID, validReview())
	require.NoError(t, err)
	return sub
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	sub := submitPending(t, f)

	result, err := f.svc.Approve(context.Background(), sub.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, result.Submission.Status)
	assert.Equal(t, f.task.PaymentPerTask, result.Earnings)
	assert.NotEmpty(t, result.PayoutRef)
	require.NotNil(t, result.Submission.ReviewedAt)
	require.NotNil(t, result.Submission.CompletedAt)
	assert.Equal(t, "looks good", result.Submission.AdminNotes)

	assert.Equal(t, []float64{f.task.PaymentPerTask}, f.payout.credits)
	assert.Equal(t, 1, f.catalog.increments[f.task.ID])
	assert.Equal(t, 1, f.notifier.approved)

	t.Run("second approval fails and pays nothing more", func(t *testing.T) {
		_, err := f.svc.Approve(context.Background(), sub.ID, "")
		assert.ErrorIs(t, err, ErrNotPending)
		assert.Len(t, f.payout.credits, 1)
		assert.Equal(t, 1, f.catalog.increments[f.task.ID])
	})
}

func TestApproveUsesPaymentAtApprovalTime(t *testing.T) {
	f := newFixture(t)
	sub := submitPending(t, f)

	// Payment raised between submission and review
	f.task.PaymentPerTask = 2.00
	f.catalog.add(f.task)

	result, err := f.svc.Approve(context.Background(), sub.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2.00, result.Earnings)
	assert.Equal(t, []float64{2.00}, f.payout.credits)
}

func TestApprovePayoutFailure(t *testing.T) {
	f := newFixture(t)
	sub := submitPending(t, f)
	f.payout.fail = true

	result, err := f.svc.Approve(context.Background(), sub.ID, "")
	require.NoError(t, err)

	// Approval stands; the failed credit is flagged for manual follow-up
	assert.Equal(t, StatusApproved, result.Submission.Status)
	assert.Empty(t, result.PayoutRef)
	assert.Contains(t, result.Submission.AdminNotes, "payout failed")
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	sub := submitPending(t, f)

	t.Run("reason is mandatory", func(t *testing.T) {
		_, err := f.svc.Reject(context.Background(), sub.ID, "   ", "")
		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	rejected, err := f.svc.Reject(context.Background(), sub.ID, "Screenshots do not match the task", "")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, float64(0), rejected.Earnings)
	assert.Equal(t, "Screenshots do not match the task", rejected.RejectionReason)
	assert.Equal(t, 1, f.notifier.rejected)
	assert.Empty(t, f.payout.credits)
	assert.Equal(t, 0, f.catalog.increments[f.task.ID])

	t.Run("approve after reject fails", func(t *testing.T) {
		_, err := f.svc.Approve(context.Background(), sub.ID, "")
		assert.ErrorIs(t, err, ErrNotPending)
	})
}

func TestExpireStale(t *testing.T) {
	f := newFixture(t)
	sub := submitPending(t, f)

	t.Run("inside the window nothing expires", func(t *testing.T) {
		count, err := f.svc.ExpireStale(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	f.advance(ReviewWindow + time.Minute)

	count, err := f.svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	expired, err := f.repo.FindByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, expired.Status)
	assert.Equal(t, float64(0), expired.Earnings)
	assert.Equal(t, ExpiredReason, expired.RejectionReason)

	t.Run("approve after expiry fails without paying", func(t *testing.T) {
		_, err := f.svc.Approve(context.Background(), sub.ID, "")
		assert.ErrorIs(t, err, ErrNotPending)
		assert.Empty(t, f.payout.credits)
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		count, err := f.svc.ExpireStale(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestListPendingSweepsFirst(t *testing.T) {
	f := newFixture(t)
	submitPending(t, f)
	f.advance(ReviewWindow + time.Minute)

	items, total, err := f.svc.ListPending(context.Background(), PendingFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}
