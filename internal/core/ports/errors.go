// internal/core/ports/errors.go
package ports

import "errors"

// Sentinel errors shared across layers. Handlers map these onto HTTP
// status codes; adapters translate driver errors into them.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateSKU  = errors.New("an item with this SKU already exists")
	ErrDuplicateName = errors.New("a record with this name already exists")
	ErrForbidden     = errors.New("insufficient permissions")
)
