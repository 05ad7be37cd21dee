// internal/core/domain/inventory.go
package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the stock status of an inventory item
type ItemStatus string

// Item status constants
const (
	StatusInStock      ItemStatus = "in_stock"
	StatusLowStock     ItemStatus = "low_stock"
	StatusOrdered      ItemStatus = "ordered"
	StatusDiscontinued ItemStatus = "discontinued"
)

// ValidItemStatuses lists every accepted item status
var ValidItemStatuses = []ItemStatus{
	StatusInStock,
	StatusLowStock,
	StatusOrdered,
	StatusDiscontinued,
}

// IsValid reports whether the status is one of the known values
func (s ItemStatus) IsValid() bool {
	for _, v := range ValidItemStatuses {
		if s == v {
			return true
		}
	}
	return false
}

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// InventoryItem represents a single tracked stock item
type InventoryItem struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	SKU         string           `json:"sku"`
	Quantity    int              `json:"quantity"`
	MinQuantity int              `json:"min_quantity"`
	Unit        string           `json:"unit"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	Status      ItemStatus       `json:"status"`
	CostPrice   *decimal.Decimal `json:"cost_price,omitempty"`
	SellPrice   *decimal.Decimal `json:"sell_price,omitempty"`
	Location    string           `json:"location,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	CreatedBy   uuid.UUID        `json:"created_by"`
	UpdatedBy   *uuid.UUID       `json:"updated_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Category is populated on reads that join the categories table.
	Category *Category `json:"category,omitempty"`
}

// Validate performs domain validation on the inventory item
func (i *InventoryItem) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if !skuPattern.MatchString(i.SKU) {
		return fmt.Errorf("sku %q contains invalid characters", i.SKU)
	}
	if i.Unit == "" {
		return fmt.Errorf("unit is required")
	}
	if i.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if i.MinQuantity < 0 {
		return fmt.Errorf("min_quantity cannot be negative")
	}
	if i.CostPrice != nil && i.CostPrice.IsNegative() {
		return fmt.Errorf("cost_price cannot be negative")
	}
	if i.SellPrice != nil && i.SellPrice.IsNegative() {
		return fmt.Errorf("sell_price cannot be negative")
	}
	if i.Status == "" {
		i.Status = StatusInStock
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status %q", i.Status)
	}
	return nil
}

// IsLowStock reports whether the current quantity is at or below the
// configured minimum.
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// StockValue returns quantity times sell price, or zero when the item
// has no sell price.
func (i *InventoryItem) StockValue() decimal.Decimal {
	if i.SellPrice == nil {
		return decimal.Zero
	}
	return i.SellPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PrepareForStorage prepares the item for database storage
func (i *InventoryItem) PrepareForStorage() {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}

	now := time.Now().UTC()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now

	if i.Status == "" {
		i.Status = StatusInStock
	}
}

// Category groups inventory items
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate performs domain validation on the category
func (c *Category) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return fmt.Errorf("color must be a hex value like #3b82f6")
	}
	return nil
}

// PrepareForStorage prepares the category for database storage
func (c *Category) PrepareForStorage() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
