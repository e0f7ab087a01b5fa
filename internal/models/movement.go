package models

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock movement by business intent.
type MovementType string

const (
	MovementReceive            MovementType = "receive"
	MovementProduction         MovementType = "production"
	MovementReturnFromCustomer MovementType = "return_from_customer"
	MovementTransferIn         MovementType = "transfer_in"
	MovementAdjustmentIncrease MovementType = "adjustment_increase"
	MovementSale               MovementType = "sale"
	MovementTransferOut        MovementType = "transfer_out"
	MovementDisposal           MovementType = "disposal"
	MovementReturnToSupplier   MovementType = "return_to_supplier"
	MovementAdjustmentDecrease MovementType = "adjustment_decrease"
)

// movementSigns maps every recognized movement type to its ledger sign.
var movementSigns = map[MovementType]int{
	MovementReceive:            +1,
	MovementProduction:         +1,
	MovementReturnFromCustomer: +1,
	MovementTransferIn:         +1,
	MovementAdjustmentIncrease: +1,
	MovementSale:               -1,
	MovementTransferOut:        -1,
	MovementDisposal:           -1,
	MovementReturnToSupplier:   -1,
	MovementAdjustmentDecrease: -1,
}

// Valid reports whether t is one of the ten recognized movement types.
func (t MovementType) Valid() bool {
	_, ok := movementSigns[t]
	return ok
}

// Sign returns +1 for inbound types and -1 for outbound types.
func (t MovementType) Sign() int {
	return movementSigns[t]
}

// IsAdjustment reports whether t is one of the two adjustment types, which
// take the percentage-based approval path.
func (t MovementType) IsAdjustment() bool {
	return t == MovementAdjustmentIncrease || t == MovementAdjustmentDecrease
}

// MovementStatus is the lifecycle state of a stock movement. Movements start
// pending or approved and transition to a terminal status exactly once.
type MovementStatus string

const (
	MovementPending  MovementStatus = "pending"
	MovementApproved MovementStatus = "approved"
	MovementRejected MovementStatus = "rejected"
)

// Terminal reports whether s is a final status.
func (s MovementStatus) Terminal() bool {
	return s == MovementApproved || s == MovementRejected
}

// StockMovement is the audited record of a requested quantity change. It is
// the only path through which item_locations quantities change.
type StockMovement struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	ItemID            uuid.UUID      `json:"item_id" db:"item_id"`
	LocationID        uuid.UUID      `json:"location_id" db:"location_id"`
	MovementType      MovementType   `json:"movement_type" db:"movement_type"`
	Quantity          int            `json:"quantity" db:"quantity"`
	BeforeQuantity    int            `json:"before_quantity" db:"before_quantity"`
	AfterQuantity     int            `json:"after_quantity" db:"after_quantity"`
	UnitCost          *float64       `json:"unit_cost" db:"unit_cost"`
	TotalValue        *float64       `json:"total_value" db:"total_value"`
	BatchNumber       *string        `json:"batch_number" db:"batch_number"`
	SerialNumber      *string        `json:"serial_number" db:"serial_number"`
	ReferenceNumber   *string        `json:"reference_number" db:"reference_number"`
	Reason            string         `json:"reason" db:"reason"`
	Notes             *string        `json:"notes" db:"notes"`
	AttachmentURL     *string        `json:"attachment_url" db:"attachment_url"`
	Status            MovementStatus `json:"status" db:"status"`
	TransferReference *string        `json:"transfer_reference" db:"transfer_reference"`
	CreatedBy         uuid.UUID      `json:"created_by" db:"created_by"`
	ApprovedBy        *uuid.UUID     `json:"approved_by" db:"approved_by"`
	ApprovedAt        *time.Time     `json:"approved_at" db:"approved_at"`
	IsActive          bool           `json:"is_active" db:"is_active"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// SignedDelta is the quantity change this movement applies to the ledger
// once approved.
func (m *StockMovement) SignedDelta() int {
	return m.MovementType.Sign() * m.Quantity
}

// MovementRequest is a submission into the movement pipeline.
type MovementRequest struct {
	ItemID          uuid.UUID    `json:"item_id"`
	LocationID      uuid.UUID    `json:"location_id"`
	MovementType    MovementType `json:"movement_type"`
	Quantity        int          `json:"quantity"`
	UnitCost        *float64     `json:"unit_cost"`
	BatchNumber     *string      `json:"batch_number"`
	SerialNumber    *string      `json:"serial_number"`
	ReferenceNumber *string      `json:"reference_number"`
	Reason          string       `json:"reason"`
	Notes           *string      `json:"notes"`
	// ToLocationID is required for transfer_out and produces a paired
	// transfer_in movement at the destination.
	ToLocationID *uuid.UUID `json:"to_location_id"`
	RequestedBy  uuid.UUID  `json:"-"`
	Role         Role       `json:"-"`
}

// MovementResult is the outcome of a submission: a single movement, or the
// transfer pair sharing one transfer reference.
type MovementResult struct {
	Movements         []*StockMovement `json:"movements"`
	TransferReference *string          `json:"transfer_reference,omitempty"`
}

// MovementFilter holds list filters for movement queries.
type MovementFilter struct {
	ItemID       *uuid.UUID      `query:"item_id"`
	LocationID   *uuid.UUID      `query:"location_id"`
	MovementType *MovementType   `query:"movement_type"`
	Status       *MovementStatus `query:"status"`
	FromDate     *time.Time      `query:"from_date"`
	ToDate       *time.Time      `query:"to_date"`
	Limit        int             `query:"limit"`
	Offset       int             `query:"offset"`
}
