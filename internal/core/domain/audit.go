// internal/core/domain/audit.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the kind of change an audit log records
type AuditAction string

// Audit action constants
const (
	ActionCreate       AuditAction = "create"
	ActionUpdate       AuditAction = "update"
	ActionDelete       AuditAction = "delete"
	ActionStatusChange AuditAction = "status_change"
)

// Audited entity types
const (
	EntityInventoryItem = "inventory_item"
	EntityCategory      = "category"
	EntityProfile       = "profile"
)

// AuditLog represents one recorded mutation
type AuditLog struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Action     AuditAction    `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`

	// User is populated on reads that join the profiles table.
	User *Profile `json:"user,omitempty"`
}
