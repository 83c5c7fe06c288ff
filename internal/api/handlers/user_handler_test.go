package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/internal/domain/user"
)

type stubUserRepo struct {
	users   map[uuid.UUID]*user.User
	gotPlan task.PlanType
}

func newStubUserRepo(users ...*user.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) Create(ctx context.Context, u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *stubUserRepo) ListCustomers(ctx context.Context, page, pageSize int) ([]user.User, int64, error) {
	var out []user.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) UpdatePlan(ctx context.Context, id uuid.UUID, plan task.PlanType) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	r.gotPlan = plan
	u.PlanType = plan
	return nil
}

func (r *stubUserRepo) PlanFor(ctx context.Context, id uuid.UUID) (task.PlanType, error) {
	u, ok := r.users[id]
	if !ok {
		return "", user.ErrUserNotFound
	}
	return u.PlanType, nil
}

func newUserTestRouter(repo user.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(repo)

	router := gin.New()
	router.GET("/api/admin/users", handler.ListUsers)
	router.PATCH("/api/admin/users/:id/plan", handler.UpdateUserPlan)
	return router
}

func TestListUsersIncludesWalletTotals(t *testing.T) {
	repo := newStubUserRepo(&user.User{
		ID:                uuid.New(),
		Name:              "Asma",
		Email:             "asma@example.com",
		Role:              user.RoleCustomer,
		PlanType:          task.PlanStandard,
		WalletBalance:     12.50,
		WalletTotalEarned: 40.25,
	})
	router := newUserTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/admin/users", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []struct {
			Email             string  `json:"email"`
			PlanType          string  `json:"planType"`
			WalletBalance     float64 `json:"walletBalance"`
			WalletTotalEarned float64 `json:"walletTotalEarned"`
		} `json:"users"`
		TotalCount int64 `json:"totalCount"`
	}
	decodeData(t, w.Body.Bytes(), &resp)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "asma@example.com", resp.Users[0].Email)
	assert.Equal(t, 12.50, resp.Users[0].WalletBalance)
	assert.Equal(t, 40.25, resp.Users[0].WalletTotalEarned)
	assert.Equal(t, int64(1), resp.TotalCount)
}

func TestUpdateUserPlan(t *testing.T) {
	existing := &user.User{ID: uuid.New(), Name: "Omar", Email: "omar@example.com", PlanType: task.PlanBasic}
	repo := newStubUserRepo(existing)
	router := newUserTestRouter(repo)

	t.Run("moves user to the new tier", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPatch,
			"/api/admin/users/"+existing.ID.String()+"/plan",
			bytes.NewBufferString(`{"planType":"vip"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, task.PlanVIP, repo.gotPlan)
		assert.Contains(t, w.Body.String(), `"planType":"vip"`)
	})

	t.Run("unknown tier fails binding", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPatch,
			"/api/admin/users/"+existing.ID.String()+"/plan",
			bytes.NewBufferString(`{"planType":"gold"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPatch,
			"/api/admin/users/"+uuid.New().String()+"/plan",
			bytes.NewBufferString(`{"planType":"vip"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
