// Code generated by MockGen. DO NOT EDIT.
// Source: ../../internal/core/ports/analytics_service.go
//
// Generated by this command:
//
//	mockgen -source=../../internal/core/ports/analytics_service.go -destination=analytics_service_mock.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/ammerola/stockpilot-be/internal/core/domain"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockAnalyticsService is a mock of AnalyticsService interface.
type MockAnalyticsService struct {
	ctrl     *gomock.Controller
	recorder *MockAnalyticsServiceMockRecorder
	isgomock struct{}
}

// MockAnalyticsServiceMockRecorder is the mock recorder for MockAnalyticsService.
type MockAnalyticsServiceMockRecorder struct {
	mock *MockAnalyticsService
}

// NewMockAnalyticsService creates a new mock instance.
func NewMockAnalyticsService(ctrl *gomock.Controller) *MockAnalyticsService {
	mock := &MockAnalyticsService{ctrl: ctrl}
	mock.recorder = &MockAnalyticsServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAnalyticsService) EXPECT() *MockAnalyticsServiceMockRecorder {
	return m.recorder
}

// Forecast mocks base method.
func (m *MockAnalyticsService) Forecast(ctx context.Context, itemID uuid.UUID) (*domain.Forecast, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Forecast", ctx, itemID)
	ret0, _ := ret[0].(*domain.Forecast)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Forecast indicates an expected call of Forecast.
func (mr *MockAnalyticsServiceMockRecorder) Forecast(ctx, itemID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Forecast", reflect.TypeOf((*MockAnalyticsService)(nil).Forecast), ctx, itemID)
}

// Overview mocks base method.
func (m *MockAnalyticsService) Overview(ctx context.Context) (*domain.DashboardStats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Overview", ctx)
	ret0, _ := ret[0].(*domain.DashboardStats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Overview indicates an expected call of Overview.
func (mr *MockAnalyticsServiceMockRecorder) Overview(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Overview", reflect.TypeOf((*MockAnalyticsService)(nil).Overview), ctx)
}

// Trends mocks base method.
func (m *MockAnalyticsService) Trends(ctx context.Context) ([]domain.TrendPoint, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Trends", ctx)
	ret0, _ := ret[0].([]domain.TrendPoint)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Trends indicates an expected call of Trends.
func (mr *MockAnalyticsServiceMockRecorder) Trends(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Trends", reflect.TypeOf((*MockAnalyticsService)(nil).Trends), ctx)
}
