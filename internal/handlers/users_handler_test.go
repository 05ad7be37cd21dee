// internal/handlers/users_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/internal/handlers"
	"github.com/ammerola/stockpilot-be/internal/handlers/middleware"
	"github.com/ammerola/stockpilot-be/test/helpers"
	"github.com/ammerola/stockpilot-be/test/mocks"
)

func TestUserHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := handlers.NewUserHandler(mocks.NewMockUserService(ctrl), helpers.TestLogger())

	t.Run("returns_own_profile", func(t *testing.T) {
		profile := helpers.CreateTestProfile(func(p *domain.Profile) {
			p.Email = "me@example.com"
			p.Role = domain.RoleViewer
		})

		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		req = req.WithContext(middleware.WithProfile(req.Context(), profile))
		rec := httptest.NewRecorder()

		handler.Me(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got domain.Profile
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "me@example.com", got.Email)
		assert.Equal(t, domain.RoleViewer, got.Role)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		rec := httptest.NewRecorder()

		handler.Me(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUserHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := mocks.NewMockUserService(ctrl)
	service.EXPECT().
		List(gomock.Any(), 2, 10).
		Return([]domain.Profile{
			*helpers.CreateTestProfile(),
			*helpers.CreateTestProfile(func(p *domain.Profile) { p.Role = domain.RoleAdmin }),
		}, int64(12), nil)

	handler := handlers.NewUserHandler(service, helpers.TestLogger())

	req := authed(httptest.NewRequest("GET", "/api/v1/users?page=2&page_size=10", nil))
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, float64(12), response["total"])
	assert.Equal(t, float64(2), response["page"])
	assert.Len(t, response["data"], 2)
}

func TestUserHandler_ChangeRole(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		payload        string
		setupMocks     func(*mocks.MockUserService)
		expectedStatus int
	}{
		{
			name:    "promotes_viewer_to_manager",
			userID:  userID.String(),
			payload: `{"role":"manager"}`,
			setupMocks: func(m *mocks.MockUserService) {
				m.EXPECT().
					ChangeRole(gomock.Any(), userID, domain.RoleManager, gomock.Any()).
					Return(helpers.CreateTestProfile(func(p *domain.Profile) {
						p.ID = userID
						p.Role = domain.RoleManager
					}), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejects_unknown_role",
			userID:         userID.String(),
			payload:        `{"role":"superuser"}`,
			setupMocks:     func(m *mocks.MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_user_id",
			userID:         "not-a-uuid",
			payload:        `{"role":"manager"}`,
			setupMocks:     func(m *mocks.MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "user_not_found",
			userID:  userID.String(),
			payload: `{"role":"admin"}`,
			setupMocks: func(m *mocks.MockUserService) {
				m.EXPECT().
					ChangeRole(gomock.Any(), userID, domain.RoleAdmin, gomock.Any()).
					Return(nil, fmt.Errorf("load profile: %w", ports.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:    "own_role_change_forbidden",
			userID:  userID.String(),
			payload: `{"role":"viewer"}`,
			setupMocks: func(m *mocks.MockUserService) {
				m.EXPECT().
					ChangeRole(gomock.Any(), userID, domain.RoleViewer, gomock.Any()).
					Return(nil, fmt.Errorf("cannot change own role: %w", ports.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := mocks.NewMockUserService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewUserHandler(service, helpers.TestLogger())

			req := authed(httptest.NewRequest("PATCH", "/api/v1/users/"+tt.userID+"/role", bytes.NewBufferString(tt.payload)))
			req.SetPathValue("id", tt.userID)
			rec := httptest.NewRecorder()

			handler.ChangeRole(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
