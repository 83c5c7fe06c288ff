package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
)

type stubTaskService struct {
	planTasks []task.Task
	gotPlan   task.PlanType
}

func (s *stubTaskService) CreateTask(ctx context.Context, input task.CreateTaskInput) (*task.Task, error) {
	return nil, task.ErrInvalidInput
}

func (s *stubTaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.TaskWithStats, error) {
	return nil, task.ErrTaskNotFound
}

func (s *stubTaskService) ListTasks(ctx context.Context, filter task.TaskFilter) ([]task.TaskWithStats, int64, error) {
	return nil, 0, nil
}

func (s *stubTaskService) UpdateTask(ctx context.Context, id uuid.UUID, input task.UpdateTaskInput) (*task.Task, error) {
	return nil, task.ErrTaskNotFound
}

func (s *stubTaskService) DeleteTask(ctx context.Context, id uuid.UUID) (*task.DeleteOutcome, error) {
	return nil, task.ErrTaskNotFound
}

func (s *stubTaskService) TasksByPlan(ctx context.Context, plan task.PlanType, isActive *bool) ([]task.Task, error) {
	s.gotPlan = plan
	return s.planTasks, nil
}

func (s *stubTaskService) AvailableForUser(ctx context.Context, userID uuid.UUID) ([]task.Task, task.PlanType, error) {
	return nil, task.PlanBasic, nil
}

func newTaskTestRouter(svc task.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewTaskHandler(svc)

	router := gin.New()
	router.GET("/api/tasks/plan-types", handler.PlanTypes)
	router.GET("/api/tasks/categories", handler.Categories)
	router.GET("/api/admin/tasks/plan/:planType", handler.TasksByPlan)
	return router
}

func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestTasksByPlan(t *testing.T) {
	svc := &stubTaskService{planTasks: []task.Task{
		{ID: uuid.New(), Title: "Visit example.com homepage", PlanType: task.PlanPremium},
	}}
	router := newTaskTestRouter(svc)

	t.Run("valid plan tier", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/admin/tasks/plan/premium", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, task.PlanPremium, svc.gotPlan)

		var resp struct {
			PlanType string `json:"planType"`
			Count    int    `json:"count"`
		}
		decodeData(t, w.Body.Bytes(), &resp)
		assert.Equal(t, "premium", resp.PlanType)
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("unknown plan tier rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/admin/tasks/plan/gold", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPlanTypesAndCategories(t *testing.T) {
	router := newTaskTestRouter(&stubTaskService{})

	t.Run("plan tiers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/tasks/plan-types", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var plans []string
		decodeData(t, w.Body.Bytes(), &plans)
		assert.ElementsMatch(t, []string{"basic", "standard", "premium", "vip"}, plans)
	})

	t.Run("categories", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/tasks/categories", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var categories []string
		decodeData(t, w.Body.Bytes(), &categories)
		assert.Contains(t, categories, "website-visit")
		assert.Contains(t, categories, "survey")
		assert.Len(t, categories, 6)
	})
}
