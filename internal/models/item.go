package models

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SKU         string    `json:"sku" db:"sku"`
	Name        string    `json:"name" db:"name"`
	Unit        string    `json:"unit" db:"unit"`
	Barcode     *string   `json:"barcode" db:"barcode"`
	Category    *string   `json:"category" db:"category"`
	Description *string   `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ItemWithStock decorates an item with its per-location allocations and the
// derived total across locations.
type ItemWithStock struct {
	Item
	Allocations []*StockAllocation `json:"stock_allocations"`
	TotalStock  int                `json:"total_stock"`
}
