package models

import (
	"time"

	"github.com/google/uuid"
)

// StockAllocation is the ledger row for one (item, location) pair. Quantity
// only changes through approved stock movements.
type StockAllocation struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ItemID       uuid.UUID `json:"item_id" db:"item_id"`
	LocationID   uuid.UUID `json:"location_id" db:"location_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	MinThreshold *int      `json:"min_threshold" db:"min_threshold"`
	MaxThreshold *int      `json:"max_threshold" db:"max_threshold"`
	LastUpdated  time.Time `json:"last_updated" db:"last_updated"`
}

// StockAllocationInput seeds or adjusts an item's allocation at a location.
type StockAllocationInput struct {
	LocationID   uuid.UUID `json:"location_id"`
	Quantity     int       `json:"quantity"`
	MinThreshold *int      `json:"min_threshold"`
	MaxThreshold *int      `json:"max_threshold"`
}
