// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/inventory_repository.go -destination=inventory_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/category_repository.go -destination=category_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/snapshot_repository.go -destination=snapshot_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/audit_repository.go -destination=audit_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/profile_repository.go -destination=profile_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/inventory_service.go -destination=inventory_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/analytics_service.go -destination=analytics_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/category_service.go -destination=category_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
