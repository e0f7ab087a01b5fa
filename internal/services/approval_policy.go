package services

import (
	"math"

	"stocktrail/internal/models"
)

// adjustmentApprovalThreshold is the percentage change above which an
// adjustment needs explicit review even from Admin or Manager.
const adjustmentApprovalThreshold = 20.0

// ApprovalPolicy decides whether a movement applies immediately or queues for
// review. It is a pure function of role, type, quantity, and current on-hand.
type ApprovalPolicy struct{}

func NewApprovalPolicy() *ApprovalPolicy {
	return &ApprovalPolicy{}
}

// Decide returns the initial status for a movement request.
//
// Staff submissions always queue. Admin and Manager movements are approved
// immediately except adjustments, where a change above 20% of the current
// quantity queues. An adjustment against a zero baseline always queues: there
// is no meaningful percentage to compare.
func (p *ApprovalPolicy) Decide(role models.Role, movementType models.MovementType, quantity, currentQuantity int) models.MovementStatus {
	if !role.CanAutoApprove() {
		return models.MovementPending
	}

	if !movementType.IsAdjustment() {
		return models.MovementApproved
	}

	if currentQuantity == 0 {
		return models.MovementPending
	}

	percent := math.Abs(float64(quantity)/float64(currentQuantity)) * 100
	if percent > adjustmentApprovalThreshold {
		return models.MovementPending
	}
	return models.MovementApproved
}
