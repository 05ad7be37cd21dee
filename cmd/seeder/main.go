package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
)

// seedProfile is one demo account plus its fixed API token.
type seedProfile struct {
	Email    string
	FullName string
	Role     domain.UserRole
	Token    string
}

// Demo accounts. Tokens are deliberately predictable so the API can be
// exercised with curl right after seeding. Never run this against a
// production database.
var seedProfiles = []seedProfile{
	{Email: "admin@stockpilot.dev", FullName: "Ada Admin", Role: domain.RoleAdmin, Token: "sp_admin_token"},
	{Email: "manager@stockpilot.dev", FullName: "Morgan Manager", Role: domain.RoleManager, Token: "sp_manager_token"},
	{Email: "viewer@stockpilot.dev", FullName: "Val Viewer", Role: domain.RoleViewer, Token: "sp_viewer_token"},
}

type seedCategory struct {
	Name        string
	Description string
	Color       string
}

var seedCategories = []seedCategory{
	{Name: "Raw Materials", Description: "Unprocessed inputs for production", Color: "#8b5cf6"},
	{Name: "Packaging", Description: "Boxes, labels and filler", Color: "#f59e0b"},
	{Name: "Finished Goods", Description: "Sellable stock ready to ship", Color: "#10b981"},
	{Name: "Consumables", Description: "Office and warehouse supplies", Color: "#3b82f6"},
	{Name: "Spare Parts", Description: "Maintenance parts for equipment", Color: "#ef4444"},
}

// seedItem describes one demo item and the shape of its stock history.
// DailyDraw is the average number of units consumed per day; the
// snapshot series walks backwards from Quantity using that rate so the
// forecast endpoints return non-trivial projections out of the box.
type seedItem struct {
	Name        string
	SKU         string
	Description string
	Unit        string
	Category    string
	Quantity    int
	MinQuantity int
	DailyDraw   float64
	CostPrice   string
	SellPrice   string
	Location    string
}

var seedItems = []seedItem{
	{Name: "Aluminum Sheet 2mm", SKU: "RM-ALU-2MM", Description: "2mm aluminum sheet, 1x2m", Unit: "sheets", Category: "Raw Materials", Quantity: 140, MinQuantity: 40, DailyDraw: 4.5, CostPrice: "18.50", SellPrice: "27.90", Location: "A-01"},
	{Name: "Steel Rod 10mm", SKU: "RM-STL-10MM", Description: "Cold-rolled steel rod", Unit: "pieces", Category: "Raw Materials", Quantity: 60, MinQuantity: 50, DailyDraw: 6.0, CostPrice: "4.20", SellPrice: "6.80", Location: "A-02"},
	{Name: "Epoxy Resin 5L", SKU: "RM-EPX-5L", Description: "Two-part epoxy resin kit", Unit: "cans", Category: "Raw Materials", Quantity: 25, MinQuantity: 10, DailyDraw: 0.8, CostPrice: "42.00", SellPrice: "64.00", Location: "A-07"},
	{Name: "Shipping Box Medium", SKU: "PK-BOX-M", Description: "40x30x20cm double wall", Unit: "boxes", Category: "Packaging", Quantity: 480, MinQuantity: 200, DailyDraw: 22.0, CostPrice: "0.85", Location: "B-01"},
	{Name: "Bubble Wrap Roll", SKU: "PK-BUB-50M", Description: "50m perforated roll", Unit: "rolls", Category: "Packaging", Quantity: 18, MinQuantity: 12, DailyDraw: 1.2, CostPrice: "11.40", Location: "B-03"},
	{Name: "Branded Tape", SKU: "PK-TAPE-BR", Description: "Printed packing tape 66m", Unit: "rolls", Category: "Packaging", Quantity: 95, MinQuantity: 30, DailyDraw: 3.0, CostPrice: "2.10", Location: "B-02"},
	{Name: "Desk Lamp Nordic", SKU: "FG-LAMP-ND", Description: "Assembled desk lamp, oak base", Unit: "units", Category: "Finished Goods", Quantity: 210, MinQuantity: 50, DailyDraw: 7.5, CostPrice: "14.00", SellPrice: "39.00", Location: "C-01"},
	{Name: "Wall Shelf 60cm", SKU: "FG-SHLF-60", Description: "Floating shelf, white", Unit: "units", Category: "Finished Goods", Quantity: 34, MinQuantity: 40, DailyDraw: 2.8, CostPrice: "8.60", SellPrice: "24.50", Location: "C-04"},
	{Name: "Coat Rack Steel", SKU: "FG-RACK-ST", Description: "Free-standing coat rack", Unit: "units", Category: "Finished Goods", Quantity: 76, MinQuantity: 20, DailyDraw: 1.9, CostPrice: "19.80", SellPrice: "54.00", Location: "C-02"},
	{Name: "Nitrile Gloves L", SKU: "CS-GLV-L", Description: "Box of 100, powder free", Unit: "boxes", Category: "Consumables", Quantity: 42, MinQuantity: 15, DailyDraw: 1.5, CostPrice: "6.90", Location: "D-01"},
	{Name: "Label Sheets A4", SKU: "CS-LBL-A4", Description: "Self-adhesive, 24 per sheet", Unit: "packs", Category: "Consumables", Quantity: 130, MinQuantity: 25, DailyDraw: 2.2, CostPrice: "3.40", Location: "D-02"},
	{Name: "Conveyor Belt Segment", SKU: "SP-CNV-SEG", Description: "Replacement belt segment, line 2", Unit: "pieces", Category: "Spare Parts", Quantity: 8, MinQuantity: 4, DailyDraw: 0.15, CostPrice: "87.00", Location: "E-01"},
	{Name: "Bearing 6204-2RS", SKU: "SP-BRG-6204", Description: "Sealed ball bearing", Unit: "pieces", Category: "Spare Parts", Quantity: 55, MinQuantity: 20, DailyDraw: 0.9, CostPrice: "2.75", Location: "E-02"},
	{Name: "Hydraulic Oil 20L", SKU: "SP-OIL-20L", Description: "ISO VG 46", Unit: "drums", Category: "Spare Parts", Quantity: 6, MinQuantity: 3, DailyDraw: 0.2, CostPrice: "58.00", Location: "E-04"},
	{Name: "Discontinued Widget", SKU: "FG-WDG-OLD", Description: "Legacy product, sell-off only", Unit: "units", Category: "Finished Goods", Quantity: 12, MinQuantity: 0, DailyDraw: 0.1, CostPrice: "5.00", SellPrice: "9.99", Location: "C-09"},
}

func main() {
	var (
		days     = flag.Int("days", 45, "Days of stock snapshot history to generate")
		seed     = flag.Int64("seed", 42, "Random seed for reproducible snapshot noise")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying database")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "stockpilot"),
		getEnv("DB_PASSWORD", "stockpilot_dev_2026"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "stockpilot"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	db, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		logger.Error("Database is not reachable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	s := &seeder{
		db:     db,
		logger: logger,
		rng:    rand.New(rand.NewSource(*seed)),
		dryRun: *dryRun,
	}

	if err := s.Run(ctx, *days); err != nil {
		logger.Error("Seed run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEED SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Profiles:   %d\n", s.profileCount)
	fmt.Printf("Categories: %d\n", s.categoryCount)
	fmt.Printf("Items:      %d\n", s.itemCount)
	fmt.Printf("Snapshots:  %d (%d days)\n", s.snapshotCount, *days)
	fmt.Println("\nAPI tokens:")
	for _, p := range seedProfiles {
		fmt.Printf("  %-8s %s\n", string(p.Role)+":", p.Token)
	}
	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

type seeder struct {
	db     *pgxpool.Pool
	logger *slog.Logger
	rng    *rand.Rand
	dryRun bool

	profileCount  int
	categoryCount int
	itemCount     int
	snapshotCount int
}

// Run seeds profiles, categories, items and the snapshot history in a
// single transaction. Re-running it is safe: every insert upserts on
// its natural key. Dry runs do all the work and roll back.
func (s *seeder) Run(ctx context.Context, days int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	adminID, err := s.seedProfiles(ctx, tx)
	if err != nil {
		return err
	}

	categoryIDs, err := s.seedCategories(ctx, tx, adminID)
	if err != nil {
		return err
	}

	itemIDs, err := s.seedItems(ctx, tx, adminID, categoryIDs)
	if err != nil {
		return err
	}

	if err := s.seedSnapshots(ctx, tx, itemIDs, days); err != nil {
		return err
	}

	if s.dryRun {
		s.logger.Info("Dry run, rolling back")
		return nil
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Seed completed",
		slog.Int("profiles", s.profileCount),
		slog.Int("categories", s.categoryCount),
		slog.Int("items", s.itemCount),
		slog.Int("snapshots", s.snapshotCount))
	return nil
}

func (s *seeder) seedProfiles(ctx context.Context, tx pgx.Tx) (uuid.UUID, error) {
	var adminID uuid.UUID

	for _, p := range seedProfiles {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO profiles (email, full_name, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, role = EXCLUDED.role
			RETURNING id`,
			p.Email, p.FullName, string(p.Role),
		).Scan(&id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to seed profile %s: %w", p.Email, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO api_tokens (token, profile_id)
			VALUES ($1, $2)
			ON CONFLICT (token) DO UPDATE SET profile_id = EXCLUDED.profile_id`,
			p.Token, id,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to seed token for %s: %w", p.Email, err)
		}

		if p.Role == domain.RoleAdmin {
			adminID = id
		}
		s.profileCount++
	}

	s.logger.Info("Seeded profiles", slog.Int("count", s.profileCount))
	return adminID, nil
}

func (s *seeder) seedCategories(ctx context.Context, tx pgx.Tx, adminID uuid.UUID) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(seedCategories))

	for _, c := range seedCategories {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO categories (name, description, color, created_by)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, color = EXCLUDED.color
			RETURNING id`,
			c.Name, c.Description, c.Color, adminID,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
		ids[c.Name] = id
		s.categoryCount++
	}

	s.logger.Info("Seeded categories", slog.Int("count", s.categoryCount))
	return ids, nil
}

func (s *seeder) seedItems(ctx context.Context, tx pgx.Tx, adminID uuid.UUID, categoryIDs map[string]uuid.UUID) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(seedItems))

	for _, it := range seedItems {
		categoryID, ok := categoryIDs[it.Category]
		if !ok {
			return nil, fmt.Errorf("item %q references unknown category %q", it.SKU, it.Category)
		}

		status := domain.StatusInStock
		if it.Quantity <= it.MinQuantity {
			status = domain.StatusLowStock
		}
		if it.SKU == "FG-WDG-OLD" {
			status = domain.StatusDiscontinued
		}

		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO inventory_items (
				name, description, sku, quantity, min_quantity, unit,
				category_id, status, cost_price, sell_price, location, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (sku) DO UPDATE SET
				quantity = EXCLUDED.quantity, min_quantity = EXCLUDED.min_quantity,
				status = EXCLUDED.status, updated_at = NOW()
			RETURNING id`,
			it.Name, it.Description, it.SKU, it.Quantity, it.MinQuantity, it.Unit,
			categoryID, string(status), nullDecimal(it.CostPrice), nullDecimal(it.SellPrice),
			it.Location, adminID,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to seed item %q: %w", it.SKU, err)
		}
		ids[it.SKU] = id
		s.itemCount++
	}

	s.logger.Info("Seeded items", slog.Int("count", s.itemCount))
	return ids, nil
}

// seedSnapshots writes a per-item daily history ending today. Each
// series walks backwards from the item's current quantity at its
// DailyDraw rate with some noise and an occasional restock jump, which
// gives the forecast regression a realistic downward slope.
func (s *seeder) seedSnapshots(ctx context.Context, tx pgx.Tx, itemIDs map[string]uuid.UUID, days int) error {
	today := time.Now().UTC()
	batch := &pgx.Batch{}
	queued := 0

	for _, it := range seedItems {
		itemID := itemIDs[it.SKU]
		qty := float64(it.Quantity)

		for d := 0; d < days; d++ {
			date := today.AddDate(0, 0, -d).Format(domain.SnapshotDateLayout)

			batch.Queue(`
				INSERT INTO stock_snapshots (item_id, quantity, snapshot_date)
				VALUES ($1, $2, $3)
				ON CONFLICT (item_id, snapshot_date) DO UPDATE SET quantity = EXCLUDED.quantity`,
				itemID, int(math.Max(0, math.Round(qty))), date,
			)
			queued++

			// Step back one day: consumption plus +-30% noise.
			noise := 1 + (s.rng.Float64()-0.5)*0.6
			qty += it.DailyDraw * noise

			// Roughly every three weeks the item was restocked, so the
			// balance before that day was lower.
			if s.rng.Float64() < 1.0/21.0 && it.DailyDraw >= 1 {
				qty -= it.DailyDraw * 14
				if qty < 0 {
					qty = 0
				}
			}
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	s.snapshotCount = queued
	s.logger.Info("Seeded snapshots", slog.Int("count", queued), slog.Int("days", days))
	return nil
}

// nullDecimal maps an empty price string to NULL.
func nullDecimal(v string) *decimal.Decimal {
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
