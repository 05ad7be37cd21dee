// internal/handlers/category_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/internal/handlers"
	"github.com/ammerola/stockpilot-be/test/helpers"
	"github.com/ammerola/stockpilot-be/test/mocks"
)

func newCategoryHandler(t *testing.T, service ports.CategoryService) (*handlers.CategoryHandler, ports.CacheRepository) {
	t.Helper()

	logger := helpers.TestLogger()
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, 5*time.Minute, logger)
	manager := redis_a.NewCacheManager(cache, logger)

	return handlers.NewCategoryHandler(service, manager, logger), cache
}

func TestCategoryHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockCategoryService(ctrl)
	service.EXPECT().
		List(gomock.Any()).
		Return([]domain.Category{
			{ID: uuid.New(), Name: "Packaging", Color: "#f59e0b"},
			{ID: uuid.New(), Name: "Raw Materials", Color: "#8b5cf6"},
		}, nil)

	handler, _ := newCategoryHandler(t, service)

	req := httptest.NewRequest("GET", "/api/v1/categories", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, authed(req))

	assert.Equal(t, http.StatusOK, rec.Code)

	var categories []domain.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
	assert.Equal(t, "Packaging", categories[0].Name)
}

func TestCategoryHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		setupMocks     func(*mocks.MockCategoryService)
		expectedStatus int
	}{
		{
			name:    "creates_category",
			payload: `{"name":"Packaging","description":"Boxes and filler","color":"#f59e0b"}`,
			setupMocks: func(m *mocks.MockCategoryService) {
				m.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ interface{}, c *domain.Category, _ uuid.UUID) error {
						assert.Equal(t, "Packaging", c.Name)
						assert.Equal(t, "#f59e0b", c.Color)
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "rejects_missing_name",
			payload:        `{"description":"no name"}`,
			setupMocks:     func(m *mocks.MockCategoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_bad_color",
			payload:        `{"name":"Packaging","color":"orange"}`,
			setupMocks:     func(m *mocks.MockCategoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "duplicate_name_conflict",
			payload: `{"name":"Packaging"}`,
			setupMocks: func(m *mocks.MockCategoryService) {
				m.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("save category: %w", ports.ErrDuplicateName))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "malformed_json",
			payload:        `{"name":`,
			setupMocks:     func(m *mocks.MockCategoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockCategoryService(ctrl)
			tt.setupMocks(service)

			handler, _ := newCategoryHandler(t, service)

			req := authed(httptest.NewRequest("POST", "/api/v1/categories", bytes.NewBufferString(tt.payload)))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestCategoryHandler_Update(t *testing.T) {
	categoryID := uuid.New()

	t.Run("renames_category", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockCategoryService(ctrl)
		service.EXPECT().
			Update(gomock.Any(), categoryID, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ interface{}, _ uuid.UUID, update ports.CategoryUpdate, _ uuid.UUID) (*domain.Category, error) {
				require.NotNil(t, update.Name)
				assert.Equal(t, "Supplies", *update.Name)
				assert.Nil(t, update.Color)
				return &domain.Category{ID: categoryID, Name: "Supplies"}, nil
			})

		handler, _ := newCategoryHandler(t, service)

		req := authed(httptest.NewRequest("PATCH", "/api/v1/categories/"+categoryID.String(), bytes.NewBufferString(`{"name":"Supplies"}`)))
		req.SetPathValue("id", categoryID.String())
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects_empty_name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockCategoryService(ctrl)
		handler, _ := newCategoryHandler(t, service)

		req := authed(httptest.NewRequest("PATCH", "/api/v1/categories/"+categoryID.String(), bytes.NewBufferString(`{"name":""}`)))
		req.SetPathValue("id", categoryID.String())
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("category_not_found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockCategoryService(ctrl)
		service.EXPECT().
			Update(gomock.Any(), categoryID, gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("load category: %w", ports.ErrNotFound))

		handler, _ := newCategoryHandler(t, service)

		req := authed(httptest.NewRequest("PATCH", "/api/v1/categories/"+categoryID.String(), bytes.NewBufferString(`{"name":"Supplies"}`)))
		req.SetPathValue("id", categoryID.String())
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCategoryHandler_Delete(t *testing.T) {
	categoryID := uuid.New()

	t.Run("deletes_and_invalidates_analytics_caches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockCategoryService(ctrl)
		service.EXPECT().
			Delete(gomock.Any(), categoryID, gomock.Any()).
			Return(nil)

		handler, cache := newCategoryHandler(t, service)

		ctx := httptest.NewRequest("GET", "/", nil).Context()
		require.NoError(t, cache.SetWithTTL(ctx, "trends:all", []string{"stale"}, time.Minute))
		require.NoError(t, cache.SetWithTTL(ctx, "dashboard:main", map[string]int{"total_items": 9}, time.Minute))

		req := authed(httptest.NewRequest("DELETE", "/api/v1/categories/"+categoryID.String(), nil))
		req.SetPathValue("id", categoryID.String())
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var out interface{}
		assert.Error(t, cache.Get(ctx, "trends:all", &out))
		assert.Error(t, cache.Get(ctx, "dashboard:main", &out))
	})

	t.Run("category_not_found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockCategoryService(ctrl)
		service.EXPECT().
			Delete(gomock.Any(), categoryID, gomock.Any()).
			Return(fmt.Errorf("delete category: %w", ports.ErrNotFound))

		handler, _ := newCategoryHandler(t, service)

		req := authed(httptest.NewRequest("DELETE", "/api/v1/categories/"+categoryID.String(), nil))
		req.SetPathValue("id", categoryID.String())
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("service_error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockCategoryService(ctrl)
		service.EXPECT().
			Delete(gomock.Any(), categoryID, gomock.Any()).
			Return(errors.New("category has items"))

		handler, _ := newCategoryHandler(t, service)

		req := authed(httptest.NewRequest("DELETE", "/api/v1/categories/"+categoryID.String(), nil))
		req.SetPathValue("id", categoryID.String())
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
