// internal/adapters/db/inventory_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
)

const uniqueViolationCode = "23505"

// inventoryRepository implements ports.InventoryRepository
type inventoryRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *Database, logger *slog.Logger) ports.InventoryRepository {
	return &inventoryRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "inventory")),
	}
}

const itemColumns = `
	i.id, i.name, i.description, i.sku, i.quantity, i.min_quantity, i.unit,
	i.category_id, i.status, i.cost_price, i.sell_price, i.location,
	i.image_url, i.created_by, i.updated_by, i.created_at, i.updated_at`

// Save creates a new inventory item
func (r *inventoryRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (
			id, name, description, sku, quantity, min_quantity, unit,
			category_id, status, cost_price, sell_price, location,
			image_url, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		item.ID, item.Name, item.Description, item.SKU, item.Quantity,
		item.MinQuantity, item.Unit, item.CategoryID, item.Status,
		item.CostPrice, item.SellPrice, item.Location, item.ImageURL,
		item.CreatedBy, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateSKU
		}
		return fmt.Errorf("failed to save inventory item: %w", err)
	}

	r.logger.DebugContext(ctx, "inventory item saved",
		slog.String("item_id", item.ID.String()),
		slog.String("sku", item.SKU))

	return nil
}

// Update updates an existing inventory item
func (r *inventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			name = $2, description = $3, sku = $4, quantity = $5,
			min_quantity = $6, unit = $7, category_id = $8, status = $9,
			cost_price = $10, sell_price = $11, location = $12,
			image_url = $13, updated_by = $14, updated_at = $15
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		item.ID, item.Name, item.Description, item.SKU, item.Quantity,
		item.MinQuantity, item.Unit, item.CategoryID, item.Status,
		item.CostPrice, item.SellPrice, item.Location, item.ImageURL,
		item.UpdatedBy, item.UpdatedAt,
	).Scan(&item.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.ErrNotFound
		}
		if isUniqueViolation(err) {
			return ports.ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	r.logger.DebugContext(ctx, "inventory item updated",
		slog.String("item_id", item.ID.String()))

	return nil
}

// FindByID retrieves an inventory item with its category joined in
func (r *inventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `,
			c.id, c.name, c.description, c.color
		FROM inventory_items i
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.id = $1`

	row := r.db.QueryRow(ctx, query, id)
	item, err := scanItemWithCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find inventory item: %w", err)
	}

	return item, nil
}

// FindBySKU retrieves an inventory item by its SKU
func (r *inventoryRepository) FindBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `,
			c.id, c.name, c.description, c.color
		FROM inventory_items i
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.sku = $1`

	row := r.db.QueryRow(ctx, query, sku)
	item, err := scanItemWithCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find inventory item by sku: %w", err)
	}

	return item, nil
}

// FindAll retrieves inventory items with filtering and pagination
func (r *inventoryRepository) FindAll(ctx context.Context, params ports.ListParams) ([]*domain.InventoryItem, int64, error) {
	var filters []squirrel.Sqlizer
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		filters = append(filters, squirrel.Or{
			squirrel.ILike{"i.name": pattern},
			squirrel.ILike{"i.sku": pattern},
		})
	}
	if params.CategoryID != nil {
		filters = append(filters, squirrel.Eq{"i.category_id": *params.CategoryID})
	}
	if params.Status != "" {
		filters = append(filters, squirrel.Eq{"i.status": params.Status})
	}

	qb := squirrel.Select(
		"i.id", "i.name", "i.description", "i.sku", "i.quantity",
		"i.min_quantity", "i.unit", "i.category_id", "i.status",
		"i.cost_price", "i.sell_price", "i.location", "i.image_url",
		"i.created_by", "i.updated_by", "i.created_at", "i.updated_at",
		"c.id", "c.name", "c.description", "c.color",
	).From("inventory_items i").
		LeftJoin("categories c ON c.id = i.category_id").
		PlaceholderFormat(squirrel.Dollar)

	countQb := squirrel.Select("COUNT(*)").
		From("inventory_items i").
		PlaceholderFormat(squirrel.Dollar)

	for _, f := range filters {
		qb = qb.Where(f)
		countQb = countQb.Where(f)
	}

	// Count total items (before pagination)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, fmt.Errorf("failed to count inventory items: %w", err)
	}

	orderBy := "i.updated_at DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}

		switch params.SortBy {
		case "name":
			orderBy = fmt.Sprintf("i.name %s", direction)
		case "sku":
			orderBy = fmt.Sprintf("i.sku %s", direction)
		case "quantity":
			orderBy = fmt.Sprintf("i.quantity %s", direction)
		case "created":
			orderBy = fmt.Sprintf("i.created_at %s", direction)
		default:
			orderBy = fmt.Sprintf("i.updated_at %s", direction)
		}
	}
	qb = qb.OrderBy(orderBy)

	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize))
		qb = qb.Offset(uint64((params.Page - 1) * params.PageSize))
	}

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query inventory items: %w", err)
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		var raw itemRow
		if err := rows.Scan(raw.fields()...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, raw.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, totalCount, nil
}

// FindActive retrieves every item that is not discontinued
func (r *inventoryRepository) FindActive(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.findItems(ctx, `WHERE i.status <> $1`, domain.StatusDiscontinued)
}

// FindEvery retrieves all items, discontinued ones included
func (r *inventoryRepository) FindEvery(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.findItems(ctx, "")
}

func (r *inventoryRepository) findItems(ctx context.Context, where string, args ...any) ([]domain.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `,
			c.id, c.name, c.description, c.color
		FROM inventory_items i
		LEFT JOIN categories c ON c.id = i.category_id
		` + where + `
		ORDER BY i.name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var raw itemRow
		if err := rows.Scan(raw.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, *raw.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// Delete performs a hard delete
func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	r.logger.InfoContext(ctx, "inventory item deleted",
		slog.String("item_id", id.String()))

	return nil
}

// Exists checks if an inventory item exists
func (r *inventoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM inventory_items WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// Count returns the total number of inventory items
func (r *inventoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count inventory items: %w", err)
	}
	return count, nil
}

// CountLowStock counts items whose quantity is at or below their minimum
func (r *inventoryRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE quantity <= min_quantity`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count low stock items: %w", err)
	}
	return count, nil
}

// CountByStatus returns item counts grouped by status
func (r *inventoryRepository) CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM inventory_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[domain.ItemStatus]int)
	for rows.Next() {
		var status domain.ItemStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		breakdown[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return breakdown, nil
}

// TotalStockValue sums quantity * sell_price across all items
func (r *inventoryRepository) TotalStockValue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity * sell_price), 0) FROM inventory_items`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute stock value: %w", err)
	}
	return total, nil
}

// itemRow buffers one scanned inventory row with its optional category
// columns before conversion to the domain type.
type itemRow struct {
	id          uuid.UUID
	name        string
	description sql.NullString
	sku         string
	quantity    int
	minQuantity int
	unit        string
	categoryID  *uuid.UUID
	status      domain.ItemStatus
	costPrice   pgtype.Numeric
	sellPrice   pgtype.Numeric
	location    sql.NullString
	imageURL    sql.NullString
	createdBy   uuid.UUID
	updatedBy   *uuid.UUID
	createdAt   pgtype.Timestamptz
	updatedAt   pgtype.Timestamptz

	catID    *uuid.UUID
	catName  sql.NullString
	catDesc  sql.NullString
	catColor sql.NullString
}

func (w *itemRow) fields() []any {
	return []any{
		&w.id, &w.name, &w.description, &w.sku, &w.quantity,
		&w.minQuantity, &w.unit, &w.categoryID, &w.status,
		&w.costPrice, &w.sellPrice, &w.location, &w.imageURL,
		&w.createdBy, &w.updatedBy, &w.createdAt, &w.updatedAt,
		&w.catID, &w.catName, &w.catDesc, &w.catColor,
	}
}

func (w *itemRow) toDomain() *domain.InventoryItem {
	item := &domain.InventoryItem{
		ID:          w.id,
		Name:        w.name,
		Description: w.description.String,
		SKU:         w.sku,
		Quantity:    w.quantity,
		MinQuantity: w.minQuantity,
		Unit:        w.unit,
		CategoryID:  w.categoryID,
		Status:      w.status,
		CostPrice:   numericToDecimal(w.costPrice),
		SellPrice:   numericToDecimal(w.sellPrice),
		Location:    w.location.String,
		ImageURL:    w.imageURL.String,
		CreatedBy:   w.createdBy,
		UpdatedBy:   w.updatedBy,
		CreatedAt:   w.createdAt.Time,
		UpdatedAt:   w.updatedAt.Time,
	}

	if w.catID != nil {
		item.Category = &domain.Category{
			ID:          *w.catID,
			Name:        w.catName.String,
			Description: w.catDesc.String,
			Color:       w.catColor.String,
		}
	}

	return item
}

func scanItemWithCategory(row pgx.Row) (*domain.InventoryItem, error) {
	var raw itemRow
	if err := row.Scan(raw.fields()...); err != nil {
		return nil, err
	}
	return raw.toDomain(), nil
}

// numericToDecimal converts a nullable pgtype.Numeric column into a
// decimal pointer, nil when the column was NULL.
func numericToDecimal(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v, err := n.Value()
	if err != nil || v == nil {
		return nil
	}

	switch t := v.(type) {
	case string:
		if d, err := decimal.NewFromString(t); err == nil {
			return &d
		}
	case []byte:
		if d, err := decimal.NewFromString(string(t)); err == nil {
			return &d
		}
	case float64:
		d := decimal.NewFromFloat(t)
		return &d
	case int64:
		d := decimal.NewFromInt(t)
		return &d
	default:
		if d, err := decimal.NewFromString(fmt.Sprint(v)); err == nil {
			return &d
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
