package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"stocktrail/internal/caching"
	"stocktrail/internal/models"
	"stocktrail/internal/repositories"
)

// stockCacheTTL is short because quantities change with every approval.
const stockCacheTTL = 5 * time.Minute

// StockService exposes read access to the stock ledger. All writes go
// through the movement pipeline.
type StockService interface {
	GetQuantity(ctx context.Context, itemID, locationID uuid.UUID) (int, error)
	GetAllocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.StockAllocation, error)
	AllocationsByItem(ctx context.Context, itemID uuid.UUID) ([]*models.StockAllocation, error)
	LowStock(ctx context.Context) ([]*models.StockAllocation, error)
}

type stockService struct {
	stockRepo    repositories.StockRepository
	cacheService caching.CacheService
}

func NewStockService(stockRepo repositories.StockRepository, cacheService caching.CacheService) StockService {
	return &stockService{stockRepo: stockRepo, cacheService: cacheService}
}

func (s *stockService) GetQuantity(ctx context.Context, itemID, locationID uuid.UUID) (int, error) {
	if s.cacheService != nil {
		if cached, err := s.cacheService.GetStockQuantity(ctx, itemID, locationID); cached != nil {
			return *cached, nil
		} else if err != nil {
			// Cache errors shouldn't fail the read
			log.Printf("Stock cache error for %s-%s: %v", itemID.String(), locationID.String(), err)
		}
	}

	quantity, err := s.stockRepo.GetQuantity(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}

	if s.cacheService != nil {
		if cacheErr := s.cacheService.SetStockQuantity(ctx, itemID, locationID, quantity, stockCacheTTL); cacheErr != nil {
			log.Printf("Failed to cache stock quantity for %s-%s: %v", itemID.String(), locationID.String(), cacheErr)
		}
	}
	return quantity, nil
}

func (s *stockService) GetAllocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.StockAllocation, error) {
	return s.stockRepo.GetAllocation(ctx, itemID, locationID)
}

func (s *stockService) AllocationsByItem(ctx context.Context, itemID uuid.UUID) ([]*models.StockAllocation, error) {
	return s.stockRepo.ListByItem(ctx, itemID)
}

func (s *stockService) LowStock(ctx context.Context) ([]*models.StockAllocation, error) {
	return s.stockRepo.ListBelowMinThreshold(ctx)
}
