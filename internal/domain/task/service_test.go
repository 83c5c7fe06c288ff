package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTaskRepo struct {
	tasks   map[uuid.UUID]*Task
	deleted []uuid.UUID
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, t *Task) error {
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var out []Task
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) FindByPlan(ctx context.Context, plan PlanType, isActive *bool) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.PlanType != plan {
			continue
		}
		if isActive != nil && t.IsActive != *isActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, t *Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return ErrTaskNotFound
	}
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeTaskRepo) IncrementCompletions(ctx context.Context, id uuid.UUID) error {
	t, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	t.CurrentCompletions++
	if t.MaxCompletions != nil && t.CurrentCompletions >= *t.MaxCompletions {
		t.IsActive = false
	}
	return nil
}

type fakeGauge struct {
	counts  map[uuid.UUID]int64
	started map[uuid.UUID][]uuid.UUID // userID -> taskIDs
}

func newFakeGauge() *fakeGauge {
	return &fakeGauge{
		counts:  make(map[uuid.UUID]int64),
		started: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (g *fakeGauge) CountForTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	return g.counts[taskID], nil
}

func (g *fakeGauge) StatusCountsForTask(ctx context.Context, taskID uuid.UUID) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (g *fakeGauge) TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.started[userID], nil
}

type fakePlans struct {
	plans map[uuid.UUID]PlanType
}

func (p *fakePlans) PlanFor(ctx context.Context, userID uuid.UUID) (PlanType, error) {
	plan, ok := p.plans[userID]
	if !ok {
		return PlanBasic, nil
	}
	return plan, nil
}

type fakeCache struct {
	entries  map[string]string
	sets     int
	deletes  []string
	patterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	val, ok := c.entries[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return val, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
		c.deletes = append(c.deletes, key)
	}
	return nil
}

func (c *fakeCache) ClearByPattern(ctx context.Context, pattern string) error {
	c.patterns = append(c.patterns, pattern)
	c.entries = make(map[string]string)
	return nil
}

func newTestService(repo *fakeTaskRepo, gauge *fakeGauge, plans *fakePlans) Service {
	return newTestServiceWithCache(repo, gauge, plans, nil)
}

func newTestServiceWithCache(repo *fakeTaskRepo, gauge *fakeGauge, plans *fakePlans, cache ListingCache) Service {
	if gauge == nil {
		gauge = newFakeGauge()
	}
	if plans == nil {
		plans = &fakePlans{plans: make(map[uuid.UUID]PlanType)}
	}
	return NewService(repo, gauge, plans, cache, zap.NewNop())
}

func validCreateInput() CreateTaskInput {
	return CreateTaskInput{
		Title:          "Visit example.com homepage",
		Description:    "Open the homepage and stay for one minute",
		WebsiteURL:     "https://example.com",
		WebsiteName:    "Example",
		PaymentPerTask: 0.50,
		PlanType:       PlanBasic,
		Category:       CategoryWebsiteVisit,
		EstimatedTime:  5,
		Instructions:   "Open the link, wait, close",
		Priority:       PriorityMedium,
		CreatedBy:      uuid.New(),
	}
}

func TestCreateTask(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, nil, nil)

	created, err := svc.CreateTask(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, 0, created.CurrentCompletions)

	t.Run("invalid payment rejected", func(t *testing.T) {
		input := validCreateInput()
		input.PaymentPerTask = 2000
		_, err := svc.CreateTask(context.Background(), input)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "payment_per_task", vErr.Field)
	})

	t.Run("explicit inactive flag honored", func(t *testing.T) {
		input := validCreateInput()
		inactive := false
		input.IsActive = &inactive
		created, err := svc.CreateTask(context.Background(), input)
		require.NoError(t, err)
		assert.False(t, created.IsActive)
	})
}

func TestUpdateTaskMergesOnlyProvidedFields(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, nil, nil)

	created, err := svc.CreateTask(context.Background(), validCreateInput())
	require.NoError(t, err)

	newTitle := "Visit the updated homepage"
	newPayment := 1.25
	updated, err := svc.UpdateTask(context.Background(), created.ID, UpdateTaskInput{
		Title:          &newTitle,
		PaymentPerTask: &newPayment,
	})
	require.NoError(t, err)

	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, newPayment, updated.PaymentPerTask)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.CreatedBy, updated.CreatedBy)

	t.Run("merged result is revalidated", func(t *testing.T) {
		badPayment := 0.0
		_, err := svc.UpdateTask(context.Background(), created.ID, UpdateTaskInput{
			PaymentPerTask: &badPayment,
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := svc.UpdateTask(context.Background(), uuid.New(), UpdateTaskInput{Title: &newTitle})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("deletes when no submissions reference it", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := newTestService(repo, nil, nil)
		created, err := svc.CreateTask(context.Background(), validCreateInput())
		require.NoError(t, err)

		outcome, err := svc.DeleteTask(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, outcome.Deleted)
		assert.False(t, outcome.Deactivated)
		_, err = repo.FindByID(context.Background(), created.ID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("deactivates when submissions exist", func(t *testing.T) {
		repo := newFakeTaskRepo()
		gauge := newFakeGauge()
		svc := newTestService(repo, gauge, nil)
		created, err := svc.CreateTask(context.Background(), validCreateInput())
		require.NoError(t, err)
		gauge.counts[created.ID] = 3

		outcome, err := svc.DeleteTask(context.Background(), created.ID)
		require.NoError(t, err)
		assert.False(t, outcome.Deleted)
		assert.True(t, outcome.Deactivated)

		kept, err := repo.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.False(t, kept.IsActive)
	})
}

func TestAvailableForUser(t *testing.T) {
	repo := newFakeTaskRepo()
	gauge := newFakeGauge()
	userID := uuid.New()
	plans := &fakePlans{plans: map[uuid.UUID]PlanType{userID: PlanPremium}}
	svc := newTestService(repo, gauge, plans)

	mkTask := func(mutate func(*CreateTaskInput)) *Task {
		input := validCreateInput()
		input.PlanType = PlanPremium
		if mutate != nil {
			mutate(&input)
		}
		created, err := svc.CreateTask(context.Background(), input)
		require.NoError(t, err)
		return created
	}

	offered := mkTask(nil)
	mkTask(func(in *CreateTaskInput) { in.PlanType = PlanBasic }) // wrong tier
	inactive := false
	mkTask(func(in *CreateTaskInput) { in.IsActive = &inactive })
	past := time.Now().Add(-time.Hour)
	mkTask(func(in *CreateTaskInput) { in.ExpiresAt = &past })
	started := mkTask(nil)
	gauge.started[userID] = []uuid.UUID{started.ID}

	tasks, plan, err := svc.AvailableForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, plan)
	require.Len(t, tasks, 1)
	assert.Equal(t, offered.ID, tasks[0].ID)
}

func TestAvailableForUserListingCache(t *testing.T) {
	repo := newFakeTaskRepo()
	cache := newFakeCache()
	userID := uuid.New()
	plans := &fakePlans{plans: map[uuid.UUID]PlanType{userID: PlanBasic}}
	svc := newTestServiceWithCache(repo, nil, plans, cache)

	created, err := svc.CreateTask(context.Background(), validCreateInput())
	require.NoError(t, err)

	t.Run("miss populates the cache", func(t *testing.T) {
		tasks, _, err := svc.AvailableForUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, 1, cache.sets)
		assert.Contains(t, cache.entries, "tasks:available:basic")
	})

	t.Run("hit is served without another store", func(t *testing.T) {
		tasks, _, err := svc.AvailableForUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, created.ID, tasks[0].ID)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("stale entries are re-filtered per user", func(t *testing.T) {
		stale := []Task{*created}
		stale[0].IsActive = false
		payload, err := json.Marshal(stale)
		require.NoError(t, err)
		cache.entries["tasks:available:basic"] = string(payload)

		tasks, _, err := svc.AvailableForUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("create invalidates the plan listing", func(t *testing.T) {
		_, err := svc.CreateTask(context.Background(), validCreateInput())
		require.NoError(t, err)
		assert.Contains(t, cache.deletes, "tasks:available:basic")
	})

	t.Run("update clears every listing", func(t *testing.T) {
		title := "Visit the refreshed homepage"
		_, err := svc.UpdateTask(context.Background(), created.ID, UpdateTaskInput{Title: &title})
		require.NoError(t, err)
		assert.Contains(t, cache.patterns, "tasks:available:*")
	})
}
