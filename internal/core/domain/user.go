// internal/core/domain/user.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserRole represents a user's permission level
type UserRole string

// User role constants
const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleViewer  UserRole = "viewer"
)

// ValidUserRoles lists every accepted role
var ValidUserRoles = []UserRole{RoleAdmin, RoleManager, RoleViewer}

// IsValid reports whether the role is one of the known values
func (r UserRole) IsValid() bool {
	for _, v := range ValidUserRoles {
		if r == v {
			return true
		}
	}
	return false
}

// CanWrite reports whether the role may create or update records
func (r UserRole) CanWrite() bool {
	return r == RoleAdmin || r == RoleManager
}

// Profile represents an authenticated user of the system
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs domain validation on the profile
func (p *Profile) Validate() error {
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if p.Role == "" {
		p.Role = RoleViewer
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("invalid role %q", p.Role)
	}
	return nil
}
