package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationType is the kind of node in the storage hierarchy.
type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationZone      LocationType = "zone"
	LocationAisle     LocationType = "aisle"
	LocationShelf     LocationType = "shelf"
	LocationBin       LocationType = "bin"
	LocationGeneric   LocationType = "location"
)

// Valid reports whether t is a recognized location type.
func (t LocationType) Valid() bool {
	switch t {
	case LocationWarehouse, LocationZone, LocationAisle, LocationShelf, LocationBin, LocationGeneric:
		return true
	}
	return false
}

// Location is a node in the storage hierarchy. Path is the materialized
// slash-delimited ancestor chain and Level its depth (root = 0).
type Location struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Type      LocationType `json:"type" db:"type"`
	ParentID  *uuid.UUID   `json:"parent_id" db:"parent_id"`
	Path      string       `json:"path" db:"path"`
	Level     int          `json:"level" db:"level"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
