// Code generated by MockGen. DO NOT EDIT.
// Source: ../../internal/core/ports/snapshot_repository.go
//
// Generated by this command:
//
//	mockgen -source=../../internal/core/ports/snapshot_repository.go -destination=snapshot_repository_mock.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"
	time "time"

	domain "github.com/ammerola/stockpilot-be/internal/core/domain"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockSnapshotRepository is a mock of SnapshotRepository interface.
type MockSnapshotRepository struct {
	ctrl     *gomock.Controller
	recorder *MockSnapshotRepositoryMockRecorder
	isgomock struct{}
}

// MockSnapshotRepositoryMockRecorder is the mock recorder for MockSnapshotRepository.
type MockSnapshotRepositoryMockRecorder struct {
	mock *MockSnapshotRepository
}

// NewMockSnapshotRepository creates a new mock instance.
func NewMockSnapshotRepository(ctrl *gomock.Controller) *MockSnapshotRepository {
	mock := &MockSnapshotRepository{ctrl: ctrl}
	mock.recorder = &MockSnapshotRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSnapshotRepository) EXPECT() *MockSnapshotRepositoryMockRecorder {
	return m.recorder
}

// DeleteOlderThan mocks base method.
func (m *MockSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteOlderThan", ctx, cutoff)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteOlderThan indicates an expected call of DeleteOlderThan.
func (mr *MockSnapshotRepositoryMockRecorder) DeleteOlderThan(ctx, cutoff any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteOlderThan", reflect.TypeOf((*MockSnapshotRepository)(nil).DeleteOlderThan), ctx, cutoff)
}

// FindAll mocks base method.
func (m *MockSnapshotRepository) FindAll(ctx context.Context, since string) ([]domain.StockSnapshot, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindAll", ctx, since)
	ret0, _ := ret[0].([]domain.StockSnapshot)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindAll indicates an expected call of FindAll.
func (mr *MockSnapshotRepositoryMockRecorder) FindAll(ctx, since any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindAll", reflect.TypeOf((*MockSnapshotRepository)(nil).FindAll), ctx, since)
}

// FindByItem mocks base method.
func (m *MockSnapshotRepository) FindByItem(ctx context.Context, itemID uuid.UUID, since string) ([]domain.StockSnapshot, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindByItem", ctx, itemID, since)
	ret0, _ := ret[0].([]domain.StockSnapshot)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindByItem indicates an expected call of FindByItem.
func (mr *MockSnapshotRepositoryMockRecorder) FindByItem(ctx, itemID, since any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindByItem", reflect.TypeOf((*MockSnapshotRepository)(nil).FindByItem), ctx, itemID, since)
}

// Upsert mocks base method.
func (m *MockSnapshotRepository) Upsert(ctx context.Context, snapshot *domain.StockSnapshot) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Upsert", ctx, snapshot)
	ret0, _ := ret[0].(error)
	return ret0
}

// Upsert indicates an expected call of Upsert.
func (mr *MockSnapshotRepositoryMockRecorder) Upsert(ctx, snapshot any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upsert", reflect.TypeOf((*MockSnapshotRepository)(nil).Upsert), ctx, snapshot)
}

// UpsertBatch mocks base method.
func (m *MockSnapshotRepository) UpsertBatch(ctx context.Context, snapshots []domain.StockSnapshot) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpsertBatch", ctx, snapshots)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpsertBatch indicates an expected call of UpsertBatch.
func (mr *MockSnapshotRepositoryMockRecorder) UpsertBatch(ctx, snapshots any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpsertBatch", reflect.TypeOf((*MockSnapshotRepository)(nil).UpsertBatch), ctx, snapshots)
}
