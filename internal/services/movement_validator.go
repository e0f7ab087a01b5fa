package services

import (
	"context"
	"strings"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
	"stocktrail/internal/repositories"
)

// MovementValidator checks a movement request for structural and business
// validity before any state change. Rules run in order; the first failure
// wins and nothing is mutated on failure.
type MovementValidator struct {
	itemRepo     repositories.ItemRepository
	locationRepo repositories.LocationRepository
}

func NewMovementValidator(itemRepo repositories.ItemRepository, locationRepo repositories.LocationRepository) *MovementValidator {
	return &MovementValidator{itemRepo: itemRepo, locationRepo: locationRepo}
}

func (v *MovementValidator) Validate(ctx context.Context, req *models.MovementRequest) error {
	if _, err := v.itemRepo.GetActiveByID(ctx, req.ItemID); err != nil {
		return err
	}

	if _, err := v.locationRepo.GetActiveByID(ctx, req.LocationID); err != nil {
		return err
	}
	if req.MovementType == models.MovementTransferOut && req.ToLocationID != nil {
		if _, err := v.locationRepo.GetActiveByID(ctx, *req.ToLocationID); err != nil {
			return err
		}
	}

	if req.Quantity <= 0 {
		return common.NewValidationError("quantity", "must be greater than 0")
	}

	if strings.TrimSpace(req.Reason) == "" {
		return common.NewValidationError("reason", "is required")
	}

	if !req.MovementType.Valid() {
		return common.NewValidationError("movement_type", "unrecognized movement type")
	}

	if req.MovementType == models.MovementTransferOut {
		if req.ToLocationID == nil {
			return common.NewValidationError("to_location_id", "destination is required for transfers")
		}
		if *req.ToLocationID == req.LocationID {
			return common.NewValidationError("to_location_id", "destination must differ from source")
		}
	}

	return nil
}
