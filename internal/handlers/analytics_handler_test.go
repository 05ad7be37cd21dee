// internal/handlers/analytics_handler_test.go
package handlers_test

import (
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

func newAnalyticsHandler(t *testing.T, service ports.AnalyticsService) *handlers.AnalyticsHandler {
	t.Helper()

	logger := helpers.TestLogger()
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, 5*time.Minute, logger)

	return handlers.NewAnalyticsHandler(service, cache, logger)
}

func sampleForecast(itemID uuid.UUID) *domain.Forecast {
	predicted := 18
	return &domain.Forecast{
		ItemID:              itemID,
		ItemName:            "Hex Bolt M8",
		CurrentQuantity:     24,
		MinQuantity:         10,
		AvgDailyConsumption: 3.2,
		DaysUntilStockout:   7,
		ReorderSuggested:    true,
		Data: []domain.ForecastPoint{
			{Date: "2026-08-29", Quantity: 30},
			{Date: "2026-08-30", Quantity: 27},
			{Date: "2026-08-31", Quantity: 24},
			{Date: "2026-09-01", Quantity: 21, Predicted: &predicted},
		},
	}
}

func TestAnalyticsHandler_Forecast(t *testing.T) {
	itemID := uuid.New()

	tests := []struct {
		name           string
		itemID         string
		setupMocks     func(*mocks.MockAnalyticsService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:   "returns_forecast_with_projection",
			itemID: itemID.String(),
			setupMocks: func(m *mocks.MockAnalyticsService) {
				m.EXPECT().
					Forecast(gomock.Any(), itemID).
					Return(sampleForecast(itemID), nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var forecast domain.Forecast
				require.NoError(t, json.Unmarshal(body, &forecast))
				assert.Equal(t, itemID, forecast.ItemID)
				assert.True(t, forecast.ReorderSuggested)
				assert.Equal(t, 7, forecast.DaysUntilStockout)

				last := forecast.Data[len(forecast.Data)-1]
				require.NotNil(t, last.Predicted)
				assert.Equal(t, 18, *last.Predicted)
			},
		},
		{
			name:           "invalid_item_id",
			itemID:         "nope",
			setupMocks:     func(m *mocks.MockAnalyticsService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "unknown_item",
			itemID: uuid.New().String(),
			setupMocks: func(m *mocks.MockAnalyticsService) {
				m.EXPECT().
					Forecast(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("load item: %w", ports.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "service_error",
			itemID: itemID.String(),
			setupMocks: func(m *mocks.MockAnalyticsService) {
				m.EXPECT().
					Forecast(gomock.Any(), itemID).
					Return(nil, errors.New("snapshot query failed"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockAnalyticsService(ctrl)
			tt.setupMocks(service)

			handler := newAnalyticsHandler(t, service)

			req := httptest.NewRequest("GET", "/api/v1/analytics/forecast/"+tt.itemID, nil)
			req.SetPathValue("id", tt.itemID)
			rec := httptest.NewRecorder()

			handler.Forecast(rec, authed(req))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, rec.Body.Bytes())
			}
		})
	}
}

func TestAnalyticsHandler_Forecast_ServesRepeatRequestsFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	itemID := uuid.New()
	service := mocks.NewMockAnalyticsService(ctrl)
	service.EXPECT().
		Forecast(gomock.Any(), itemID).
		Return(sampleForecast(itemID), nil).
		Times(1)

	handler := newAnalyticsHandler(t, service)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/v1/analytics/forecast/"+itemID.String(), nil)
		req.SetPathValue("id", itemID.String())
		rec := httptest.NewRecorder()

		handler.Forecast(rec, authed(req))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAnalyticsHandler_Trends(t *testing.T) {
	t.Run("returns_ordered_series", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockAnalyticsService(ctrl)
		service.EXPECT().
			Trends(gomock.Any()).
			Return([]domain.TrendPoint{
				{Date: "2026-08-29", TotalQuantity: 410, TotalValue: 1520.50, LowStockCount: 1},
				{Date: "2026-08-30", TotalQuantity: 395, TotalValue: 1471.25, LowStockCount: 2},
			}, nil)

		handler := newAnalyticsHandler(t, service)

		req := httptest.NewRequest("GET", "/api/v1/analytics/trends", nil)
		rec := httptest.NewRecorder()

		handler.Trends(rec, authed(req))

		assert.Equal(t, http.StatusOK, rec.Code)

		var trends []domain.TrendPoint
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trends))
		require.Len(t, trends, 2)
		assert.Equal(t, "2026-08-29", trends[0].Date)
		assert.Equal(t, 2, trends[1].LowStockCount)
	})

	t.Run("service_error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := mocks.NewMockAnalyticsService(ctrl)
		service.EXPECT().
			Trends(gomock.Any()).
			Return(nil, errors.New("aggregation failed"))

		handler := newAnalyticsHandler(t, service)

		req := httptest.NewRequest("GET", "/api/v1/analytics/trends", nil)
		rec := httptest.NewRecorder()

		handler.Trends(rec, authed(req))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
