package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"stocktrail/internal/caching"
	"stocktrail/internal/common"
	"stocktrail/internal/models"
	"stocktrail/internal/repositories"
)

const itemCacheTTL = 10 * time.Minute

// ItemCreate is a catalog item creation request. Opening allocations seed the
// ledger before any movement history exists.
type ItemCreate struct {
	SKU         string                        `json:"sku"`
	Name        string                        `json:"name"`
	Unit        string                        `json:"unit"`
	Barcode     *string                       `json:"barcode"`
	Category    *string                       `json:"category"`
	Description *string                       `json:"description"`
	Allocations []*models.StockAllocationInput `json:"stock_allocations"`
}

// ItemUpdate is a partial catalog item update. SKU is immutable and absent by
// design. Allocation quantities that differ from the current ledger value are
// routed through synthetic adjustment movements so history stays complete.
type ItemUpdate struct {
	Name        *string                        `json:"name"`
	Unit        *string                        `json:"unit"`
	Barcode     *string                        `json:"barcode"`
	Category    *string                        `json:"category"`
	Description *string                        `json:"description"`
	IsActive    *bool                          `json:"is_active"`
	Allocations []*models.StockAllocationInput `json:"stock_allocations"`
}

type ItemService interface {
	Create(ctx context.Context, req *ItemCreate) (*models.ItemWithStock, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ItemWithStock, error)
	Update(ctx context.Context, id uuid.UUID, req *ItemUpdate, editorID uuid.UUID, role models.Role) (*models.ItemWithStock, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]*models.ItemWithStock, error)
	Categories(ctx context.Context) ([]string, error)
}

type itemService struct {
	itemRepo        repositories.ItemRepository
	stockRepo       repositories.StockRepository
	movementService MovementService
	cacheService    caching.CacheService
}

func NewItemService(itemRepo repositories.ItemRepository, stockRepo repositories.StockRepository,
	movementService MovementService, cacheService caching.CacheService) ItemService {
	return &itemService{
		itemRepo:        itemRepo,
		stockRepo:       stockRepo,
		movementService: movementService,
		cacheService:    cacheService,
	}
}

func (s *itemService) Create(ctx context.Context, req *ItemCreate) (*models.ItemWithStock, error) {
	if strings.TrimSpace(req.SKU) == "" {
		return nil, common.NewValidationError("sku", "is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	if strings.TrimSpace(req.Unit) == "" {
		return nil, common.NewValidationError("unit", "is required")
	}

	if existing, _ := s.itemRepo.GetBySKU(ctx, req.SKU); existing != nil {
		return nil, common.NewValidationError("sku", "already exists")
	}

	item := &models.Item{
		ID:          uuid.New(),
		SKU:         req.SKU,
		Name:        req.Name,
		Unit:        req.Unit,
		Barcode:     req.Barcode,
		Category:    req.Category,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, common.NewStorageError("create item", err)
	}

	// Opening allocations predate any movement history; they seed the ledger
	// directly. Every later quantity change goes through the movement
	// pipeline.
	for _, alloc := range req.Allocations {
		if err := s.stockRepo.UpsertThresholds(ctx, item.ID, alloc.LocationID, alloc.MinThreshold, alloc.MaxThreshold); err != nil {
			return nil, common.NewStorageError("seed stock allocation", err)
		}
		if alloc.Quantity != 0 {
			if _, err := s.stockRepo.ApplyDelta(ctx, item.ID, alloc.LocationID, alloc.Quantity); err != nil {
				return nil, common.NewStorageError("seed stock allocation", err)
			}
		}
	}

	return s.withStock(ctx, item)
}

func (s *itemService) GetByID(ctx context.Context, id uuid.UUID) (*models.ItemWithStock, error) {
	var item *models.Item
	if s.cacheService != nil {
		if cached, err := s.cacheService.GetItem(ctx, id); cached != nil {
			item = cached
		} else if err != nil {
			log.Printf("Item cache error for %s: %v", id.String(), err)
		}
	}

	if item == nil {
		var err error
		item, err = s.itemRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.cacheService != nil {
			if cacheErr := s.cacheService.SetItem(ctx, item, itemCacheTTL); cacheErr != nil {
				log.Printf("Failed to cache item %s: %v", id.String(), cacheErr)
			}
		}
	}

	return s.withStock(ctx, item)
}

func (s *itemService) Update(ctx context.Context, id uuid.UUID, req *ItemUpdate, editorID uuid.UUID, role models.Role) (*models.ItemWithStock, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.Barcode != nil {
		item.Barcode = req.Barcode
	}
	if req.Category != nil {
		item.Category = req.Category
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, common.NewStorageError("update item", err)
	}
	s.invalidateItemCache(ctx, item.ID)

	// Quantity edits never bypass the movement ledger: a difference from the
	// current on-hand value becomes a synthetic adjustment movement subject to
	// the usual approval policy.
	for _, alloc := range req.Allocations {
		if err := s.stockRepo.UpsertThresholds(ctx, item.ID, alloc.LocationID, alloc.MinThreshold, alloc.MaxThreshold); err != nil {
			return nil, common.NewStorageError("update stock thresholds", err)
		}

		current, err := s.stockRepo.GetQuantity(ctx, item.ID, alloc.LocationID)
		if err != nil {
			return nil, common.NewStorageError("read stock quantity", err)
		}
		diff := alloc.Quantity - current
		if diff == 0 {
			continue
		}

		movementType := models.MovementAdjustmentIncrease
		if diff < 0 {
			movementType = models.MovementAdjustmentDecrease
			diff = -diff
		}
		if _, err := s.movementService.Submit(ctx, &models.MovementRequest{
			ItemID:       item.ID,
			LocationID:   alloc.LocationID,
			MovementType: movementType,
			Quantity:     diff,
			Reason:       "stock correction via item edit",
			RequestedBy:  editorID,
			Role:         role,
		}); err != nil {
			return nil, err
		}
	}

	return s.withStock(ctx, item)
}

func (s *itemService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.itemRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.itemRepo.Deactivate(ctx, id); err != nil {
		return common.NewStorageError("deactivate item", err)
	}
	s.invalidateItemCache(ctx, id)
	return nil
}

func (s *itemService) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*models.ItemWithStock, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	items, err := s.itemRepo.List(ctx, includeInactive, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]*models.ItemWithStock, 0, len(items))
	for _, item := range items {
		withStock, err := s.withStock(ctx, item)
		if err != nil {
			return nil, err
		}
		result = append(result, withStock)
	}
	return result, nil
}

func (s *itemService) Categories(ctx context.Context) ([]string, error) {
	return s.itemRepo.Categories(ctx)
}

func (s *itemService) withStock(ctx context.Context, item *models.Item) (*models.ItemWithStock, error) {
	allocations, err := s.stockRepo.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, common.NewStorageError("list stock allocations", err)
	}
	total := 0
	for _, alloc := range allocations {
		total += alloc.Quantity
	}
	return &models.ItemWithStock{Item: *item, Allocations: allocations, TotalStock: total}, nil
}

func (s *itemService) invalidateItemCache(ctx context.Context, id uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeleteItem(ctx, id); err != nil {
		log.Printf("Failed to invalidate item cache for %s: %v", id.String(), err)
	}
}
