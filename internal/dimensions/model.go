package dimensions

import (
	"errors"
	"time"
)

// Dimension type constants. Each processing task has its own dimension list.
const (
	TypeCleaning = "cleaning"
	TypeLabeling = "labeling"
)

var (
	// ErrNotFound is returned when a dimension does not exist.
	ErrNotFound = errors.New("dimension not found")
	// ErrDefaultProtected is returned for delete attempts on seeded defaults.
	ErrDefaultProtected = errors.New("default dimensions cannot be deleted")
	// ErrDuplicateName is returned when a dimension name already exists for a type.
	ErrDuplicateName = errors.New("dimension name already exists")
	// ErrInvalidType is returned for an unknown dimension type.
	ErrInvalidType = errors.New("invalid dimension type")
)

// Dimension is one aspect a processing task applies to each chunk, such as
// typo correction for cleaning or sentiment for labeling.
type Dimension struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	Ord         int       `json:"ord"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidType reports whether t names a known dimension type.
func ValidType(t string) bool {
	return t == TypeCleaning || t == TypeLabeling
}
