package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stocktrail/internal/caching"
	"stocktrail/internal/common"
	"stocktrail/internal/models"
	"stocktrail/internal/repositories"
)

// MovementService is the movement ledger state machine. It is the only writer
// that may change stock quantities: every change enters as a movement request,
// is validated and classified, and applies its delta only once approved.
type MovementService interface {
	Submit(ctx context.Context, req *models.MovementRequest) (*models.MovementResult, error)
	Resolve(ctx context.Context, movementID uuid.UUID, decision models.MovementStatus, resolverID uuid.UUID) (*models.StockMovement, error)
	List(ctx context.Context, filter *models.MovementFilter) ([]*models.StockMovement, error)
	ListPending(ctx context.Context) ([]*models.StockMovement, error)
	HistoryByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error)
}

type movementService struct {
	pool         repositories.TxBeginner
	itemRepo     repositories.ItemRepository
	locationRepo repositories.LocationRepository
	stockRepo    repositories.StockRepository
	movementRepo repositories.MovementRepository
	validator    *MovementValidator
	policy       *ApprovalPolicy
	cacheService caching.CacheService
}

func NewMovementService(
	pool repositories.TxBeginner,
	itemRepo repositories.ItemRepository,
	locationRepo repositories.LocationRepository,
	stockRepo repositories.StockRepository,
	movementRepo repositories.MovementRepository,
	cacheService caching.CacheService,
) MovementService {
	return &movementService{
		pool:         pool,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		validator:    NewMovementValidator(itemRepo, locationRepo),
		policy:       NewApprovalPolicy(),
		cacheService: cacheService,
	}
}

func (s *movementService) Submit(ctx context.Context, req *models.MovementRequest) (*models.MovementResult, error) {
	if err := s.validator.Validate(ctx, req); err != nil {
		return nil, err
	}

	currentQty, err := s.stockRepo.GetQuantity(ctx, req.ItemID, req.LocationID)
	if err != nil {
		return nil, common.NewStorageError("read stock quantity", err)
	}

	status := s.policy.Decide(req.Role, req.MovementType, req.Quantity, currentQty)

	if req.MovementType == models.MovementTransferOut && req.ToLocationID != nil {
		return s.submitTransfer(ctx, req, status, currentQty)
	}

	movement := s.buildMovement(req, req.MovementType, req.LocationID, status, currentQty, req.Reason)
	if status == models.MovementApproved {
		if err := s.createAndApply(ctx, []*models.StockMovement{movement}); err != nil {
			return nil, err
		}
	} else {
		if err := s.movementRepo.Create(ctx, movement); err != nil {
			return nil, common.NewStorageError("create movement", err)
		}
	}

	return &models.MovementResult{Movements: []*models.StockMovement{movement}}, nil
}

// submitTransfer creates the paired transfer_out/transfer_in records sharing
// one transfer reference. Creation is all-or-nothing: both rows insert in one
// transaction, so no single-sided transfer can persist.
func (s *movementService) submitTransfer(ctx context.Context, req *models.MovementRequest, status models.MovementStatus, sourceQty int) (*models.MovementResult, error) {
	source, err := s.locationRepo.GetActiveByID(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	destQty, err := s.stockRepo.GetQuantity(ctx, req.ItemID, *req.ToLocationID)
	if err != nil {
		return nil, common.NewStorageError("read stock quantity", err)
	}

	transferRef := fmt.Sprintf("TRF-%d", time.Now().UnixNano())

	out := s.buildMovement(req, models.MovementTransferOut, req.LocationID, status, sourceQty, req.Reason)
	out.TransferReference = &transferRef
	in := s.buildMovement(req, models.MovementTransferIn, *req.ToLocationID, status, destQty,
		fmt.Sprintf("Transfer from %s", source.Name))
	in.TransferReference = &transferRef

	pair := []*models.StockMovement{out, in}
	if status == models.MovementApproved {
		if err := s.createAndApply(ctx, pair); err != nil {
			return nil, err
		}
	} else {
		if err := s.createAll(ctx, pair); err != nil {
			return nil, err
		}
	}

	return &models.MovementResult{Movements: pair, TransferReference: &transferRef}, nil
}

func (s *movementService) buildMovement(req *models.MovementRequest, movementType models.MovementType, locationID uuid.UUID, status models.MovementStatus, currentQty int, reason string) *models.StockMovement {
	m := &models.StockMovement{
		ID:              uuid.New(),
		ItemID:          req.ItemID,
		LocationID:      locationID,
		MovementType:    movementType,
		Quantity:        req.Quantity,
		BeforeQuantity:  currentQty,
		UnitCost:        req.UnitCost,
		BatchNumber:     req.BatchNumber,
		SerialNumber:    req.SerialNumber,
		ReferenceNumber: req.ReferenceNumber,
		Reason:          reason,
		Notes:           req.Notes,
		Status:          status,
		CreatedBy:       req.RequestedBy,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}
	// Informational on pending rows; authoritative only once approved.
	m.AfterQuantity = currentQty + m.SignedDelta()
	if req.UnitCost != nil {
		total := *req.UnitCost * float64(req.Quantity)
		m.TotalValue = &total
	}
	if status == models.MovementApproved {
		requester := req.RequestedBy
		now := time.Now()
		m.ApprovedBy = &requester
		m.ApprovedAt = &now
	}
	return m
}

// createAll inserts the given movements in one transaction without touching
// the ledger.
func (s *movementService) createAll(ctx context.Context, movements []*models.StockMovement) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	txMovements := s.movementRepo.WithTx(tx)
	for _, m := range movements {
		if err := txMovements.Create(ctx, m); err != nil {
			return common.NewStorageError("create movement", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return common.NewStorageError("commit movement", err)
	}
	return nil
}

// createAndApply inserts the movements and applies their ledger deltas in one
// transaction. A failure anywhere rolls everything back.
func (s *movementService) createAndApply(ctx context.Context, movements []*models.StockMovement) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return common.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	txMovements := s.movementRepo.WithTx(tx)
	txStock := s.stockRepo.WithTx(tx)
	for _, m := range movements {
		if err := txMovements.Create(ctx, m); err != nil {
			return common.NewStorageError("create movement", err)
		}
		if _, err := txStock.ApplyDelta(ctx, m.ItemID, m.LocationID, m.SignedDelta()); err != nil {
			return common.NewStorageError("apply stock delta", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return common.NewStorageError("commit movement", err)
	}

	for _, m := range movements {
		s.invalidateStockCache(ctx, m.ItemID, m.LocationID)
	}
	return nil
}

func (s *movementService) Resolve(ctx context.Context, movementID uuid.UUID, decision models.MovementStatus, resolverID uuid.UUID) (*models.StockMovement, error) {
	if decision != models.MovementApproved && decision != models.MovementRejected {
		return nil, common.NewValidationError("status", `must be "approved" or "rejected"`)
	}

	movement, err := s.movementRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement.Status != models.MovementPending {
		return nil, common.NewConflictError(fmt.Sprintf("movement is already %s", movement.Status))
	}

	// Approving a movement whose item has been deactivated since submission
	// must not silently write the ledger.
	if decision == models.MovementApproved {
		if _, err := s.itemRepo.GetActiveByID(ctx, movement.ItemID); err != nil {
			return nil, common.NewConflictError("item has been deactivated since this movement was submitted")
		}
	}

	if movement.TransferReference != nil {
		return s.resolvePair(ctx, movement, decision, resolverID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, common.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	resolved, err := s.movementRepo.WithTx(tx).MarkResolved(ctx, movement.ID, decision, resolverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race: someone else resolved it first.
			return nil, common.NewConflictError("movement is already resolved")
		}
		return nil, common.NewStorageError("resolve movement", err)
	}

	if decision == models.MovementApproved {
		if _, err := s.stockRepo.WithTx(tx).ApplyDelta(ctx, resolved.ItemID, resolved.LocationID, resolved.SignedDelta()); err != nil {
			return nil, common.NewStorageError("apply stock delta", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewStorageError("commit resolution", err)
	}

	if decision == models.MovementApproved {
		s.invalidateStockCache(ctx, resolved.ItemID, resolved.LocationID)
	}
	return resolved, nil
}

// resolvePair resolves both halves of a transfer to the same terminal status
// in one transaction. Each half keeps its own conditional status check so a
// concurrent resolution of the counterpart aborts the whole operation.
func (s *movementService) resolvePair(ctx context.Context, movement *models.StockMovement, decision models.MovementStatus, resolverID uuid.UUID) (*models.StockMovement, error) {
	pair, err := s.movementRepo.GetPairByReference(ctx, *movement.TransferReference)
	if err != nil {
		return nil, common.NewStorageError("load transfer pair", err)
	}
	if len(pair) != 2 {
		return nil, common.NewConflictError("transfer pair is incomplete")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, common.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	txMovements := s.movementRepo.WithTx(tx)
	txStock := s.stockRepo.WithTx(tx)

	var requested *models.StockMovement
	for _, half := range pair {
		resolved, err := txMovements.MarkResolved(ctx, half.ID, decision, resolverID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, common.NewConflictError("transfer is already resolved")
			}
			return nil, common.NewStorageError("resolve transfer", err)
		}
		if decision == models.MovementApproved {
			if _, err := txStock.ApplyDelta(ctx, resolved.ItemID, resolved.LocationID, resolved.SignedDelta()); err != nil {
				return nil, common.NewStorageError("apply stock delta", err)
			}
		}
		if resolved.ID == movement.ID {
			requested = resolved
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewStorageError("commit resolution", err)
	}

	if decision == models.MovementApproved {
		for _, half := range pair {
			s.invalidateStockCache(ctx, half.ItemID, half.LocationID)
		}
	}
	return requested, nil
}

func (s *movementService) List(ctx context.Context, filter *models.MovementFilter) ([]*models.StockMovement, error) {
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	return s.movementRepo.List(ctx, filter)
}

func (s *movementService) ListPending(ctx context.Context) ([]*models.StockMovement, error) {
	return s.movementRepo.ListPending(ctx)
}

func (s *movementService) HistoryByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error) {
	if _, err := s.itemRepo.GetActiveByID(ctx, itemID); err != nil {
		return nil, 0, err
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.movementRepo.ListByItem(ctx, itemID, limit, offset)
}

func (s *movementService) invalidateStockCache(ctx context.Context, itemID, locationID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeleteStockQuantity(ctx, itemID, locationID); err != nil {
		log.Printf("Failed to invalidate stock cache for %s-%s: %v", itemID.String(), locationID.String(), err)
	}
}
