//go:build integration
// +build integration

package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/stockpilot-be/internal/adapters/db"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/test/helpers"
)

type RepositorySuite struct {
	suite.Suite
	testDB    *helpers.TestDB
	items     ports.InventoryRepository
	snapshots ports.SnapshotRepository
	audit     ports.AuditRepository
	profiles  ports.ProfileRepository
	ctx       context.Context
}

func (s *RepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	logger := helpers.TestLogger()
	s.items = db.NewInventoryRepository(s.testDB.Database, logger)
	s.snapshots = db.NewSnapshotRepository(s.testDB.Database, logger)
	s.audit = db.NewAuditRepository(s.testDB.Database, logger)
	s.profiles = db.NewProfileRepository(s.testDB.Database, logger)
	s.ctx = context.Background()
}

func (s *RepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *RepositorySuite) TestSaveAndFind() {
	item := helpers.CreateTestInventoryItem()

	err := s.items.Save(s.ctx, item)
	s.NoError(err)
	s.NotEqual(uuid.Nil, item.ID)

	saved, err := s.items.FindByID(s.ctx, item.ID)
	s.NoError(err)
	s.NotNil(saved)
	s.Equal(item.Name, saved.Name)
	s.Equal(item.SKU, saved.SKU)
	s.True(item.SellPrice.Equal(*saved.SellPrice))
}

func (s *RepositorySuite) TestUpdate() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	newPrice := decimal.NewFromFloat(19.99)
	item.Name = "Updated Name"
	item.Quantity = 2
	item.SellPrice = &newPrice
	item.UpdatedAt = time.Now()

	s.NoError(s.items.Update(s.ctx, item))

	updated, err := s.items.FindByID(s.ctx, item.ID)
	s.NoError(err)
	s.Equal("Updated Name", updated.Name)
	s.Equal(2, updated.Quantity)
	s.True(newPrice.Equal(*updated.SellPrice))
}

func (s *RepositorySuite) TestFindAll_Pagination() {
	for i := 0; i < 25; i++ {
		item := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
			item.Name = fmt.Sprintf("Item %02d", i)
			item.SKU = fmt.Sprintf("PAGE-%03d", i)
		})
		s.NoError(s.items.Save(s.ctx, item))
	}

	params := ports.ListParams{
		SortBy:    "name",
		SortOrder: "asc",
		Page:      1,
		PageSize:  10,
	}

	items, totalCount, err := s.items.FindAll(s.ctx, params)
	s.NoError(err)
	s.Len(items, 10)
	s.Equal(int64(25), totalCount)
	s.Equal("Item 00", items[0].Name)

	params.Page = 3
	items, totalCount, err = s.items.FindAll(s.ctx, params)
	s.NoError(err)
	s.Len(items, 5)
	s.Equal(int64(25), totalCount)
	s.Equal("Item 20", items[0].Name)
}

func (s *RepositorySuite) TestFindAll_SearchMatchesNameAndSKU() {
	names := map[string]string{
		"Victorian Tea Set": "ANT-TEA-001",
		"Coffee Table":      "FUR-TBL-002",
		"Vintage Radio":     "ELE-RAD-003",
	}
	for name, sku := range names {
		item := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
			item.Name = name
			item.SKU = sku
		})
		s.NoError(s.items.Save(s.ctx, item))
	}

	results, totalCount, err := s.items.FindAll(s.ctx, ports.ListParams{
		Search: "victorian", Page: 1, PageSize: 10,
	})
	s.NoError(err)
	s.Equal(int64(1), totalCount)
	s.Contains(results[0].Name, "Victorian")

	results, totalCount, err = s.items.FindAll(s.ctx, ports.ListParams{
		Search: "rad-003", Page: 1, PageSize: 10,
	})
	s.NoError(err)
	s.Equal(int64(1), totalCount)
	s.Equal("Vintage Radio", results[0].Name)
}

func (s *RepositorySuite) TestFindActiveExcludesDiscontinued() {
	active := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
		item.SKU = "ACT-001"
	})
	s.NoError(s.items.Save(s.ctx, active))

	gone := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
		item.SKU = "ACT-002"
		item.Status = domain.StatusDiscontinued
	})
	s.NoError(s.items.Save(s.ctx, gone))

	items, err := s.items.FindActive(s.ctx)
	s.NoError(err)
	s.Len(items, 1)
	s.Equal("ACT-001", items[0].SKU)

	all, err := s.items.FindEvery(s.ctx)
	s.NoError(err)
	s.Len(all, 2)
}

func (s *RepositorySuite) TestSnapshotUpsertIsIdempotent() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	snap := &domain.StockSnapshot{
		ItemID:       item.ID,
		Quantity:     40,
		SnapshotDate: "2026-08-01",
	}
	s.NoError(s.snapshots.Upsert(s.ctx, snap))
	s.NotEqual(uuid.Nil, snap.ID)
	s.False(snap.CreatedAt.IsZero())

	// Same item and date again with a different quantity
	again := &domain.StockSnapshot{
		ItemID:       item.ID,
		Quantity:     35,
		SnapshotDate: "2026-08-01",
	}
	s.NoError(s.snapshots.Upsert(s.ctx, again))
	s.Equal(snap.ID, again.ID)

	snaps, err := s.snapshots.FindByItem(s.ctx, item.ID, "")
	s.NoError(err)
	s.Len(snaps, 1)
	s.Equal(35, snaps[0].Quantity)
	s.Equal("2026-08-01", snaps[0].SnapshotDate)
}

func (s *RepositorySuite) TestSnapshotBatchAssignsIDs() {
	first := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
		item.SKU = "SNAP-001"
	})
	second := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
		item.SKU = "SNAP-002"
	})
	s.NoError(s.items.Save(s.ctx, first))
	s.NoError(s.items.Save(s.ctx, second))

	// Zero-valued IDs, as the capture worker hands them in.
	snaps := []domain.StockSnapshot{
		{ItemID: first.ID, Quantity: 12, SnapshotDate: "2026-08-20"},
		{ItemID: second.ID, Quantity: 7, SnapshotDate: "2026-08-20"},
	}
	s.NoError(s.snapshots.UpsertBatch(s.ctx, snaps))

	s.NotEqual(uuid.Nil, snaps[0].ID)
	s.NotEqual(uuid.Nil, snaps[1].ID)
	s.NotEqual(snaps[0].ID, snaps[1].ID)
	s.False(snaps[0].CreatedAt.IsZero())
	s.False(snaps[1].CreatedAt.IsZero())
}

func (s *RepositorySuite) TestSnapshotBatchAndRetention() {
	item := helpers.CreateTestInventoryItem()
	s.NoError(s.items.Save(s.ctx, item))

	snaps := helpers.CreateTestSnapshots(item.ID, "2026-08-10", 50, 45, 40, 35)
	s.NoError(s.snapshots.UpsertBatch(s.ctx, snaps))

	found, err := s.snapshots.FindByItem(s.ctx, item.ID, "")
	s.NoError(err)
	s.Len(found, 4)
	s.Equal("2026-08-07", found[0].SnapshotDate)
	s.Equal(50, found[0].Quantity)

	// An inclusive lower bound drops earlier days.
	found, err = s.snapshots.FindByItem(s.ctx, item.ID, "2026-08-09")
	s.NoError(err)
	s.Len(found, 2)
	s.Equal("2026-08-09", found[0].SnapshotDate)

	all, err := s.snapshots.FindAll(s.ctx, "2026-08-09")
	s.NoError(err)
	s.Len(all, 2)

	cutoff, _ := time.Parse(domain.SnapshotDateLayout, "2026-08-09")
	deleted, err := s.snapshots.DeleteOlderThan(s.ctx, cutoff)
	s.NoError(err)
	s.Equal(int64(2), deleted)

	found, err = s.snapshots.FindByItem(s.ctx, item.ID, "")
	s.NoError(err)
	s.Len(found, 2)
}

func (s *RepositorySuite) TestAuditRecordAndList() {
	profile := helpers.CreateTestProfile()
	s.NoError(s.profiles.Save(s.ctx, profile))

	entry := &domain.AuditLog{
		UserID:     profile.ID,
		Action:     domain.ActionCreate,
		EntityType: domain.EntityInventoryItem,
		EntityID:   uuid.New(),
		NewValues:  map[string]any{"name": "Test Item", "quantity": 10},
	}
	s.NoError(s.audit.Record(s.ctx, entry))
	s.NotEqual(uuid.Nil, entry.ID)

	logs, totalCount, err := s.audit.FindAll(s.ctx, ports.AuditListParams{
		EntityType: domain.EntityInventoryItem,
		Page:       1,
		PageSize:   10,
	})
	s.NoError(err)
	s.Equal(int64(1), totalCount)
	s.Len(logs, 1)
	s.Equal(domain.ActionCreate, logs[0].Action)
	s.Equal("Test Item", logs[0].NewValues["name"])
	s.NotNil(logs[0].User)
	s.Equal(profile.Email, logs[0].User.Email)

	recent, err := s.audit.FindRecent(s.ctx, 5)
	s.NoError(err)
	s.Len(recent, 1)
}

func (s *RepositorySuite) TestProfileRoleUpdate() {
	profile := helpers.CreateTestProfile(func(p *domain.Profile) {
		p.Role = domain.RoleViewer
	})
	s.NoError(s.profiles.Save(s.ctx, profile))

	s.NoError(s.profiles.UpdateRole(s.ctx, profile.ID, domain.RoleManager))

	updated, err := s.profiles.FindByID(s.ctx, profile.ID)
	s.NoError(err)
	s.Equal(domain.RoleManager, updated.Role)

	s.ErrorIs(s.profiles.UpdateRole(s.ctx, uuid.New(), domain.RoleAdmin), ports.ErrNotFound)
}

func (s *RepositorySuite) TestConcurrentSaves() {
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func(idx int) {
			item := helpers.CreateTestInventoryItem(func(item *domain.InventoryItem) {
				item.Name = fmt.Sprintf("Concurrent Item %d", idx)
				item.SKU = fmt.Sprintf("CONC-%03d", idx)
			})
			err := s.items.Save(context.Background(), item)
			s.NoError(err)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	count, err := s.items.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(10), count)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}
