package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"stocktrail/internal/repositories"
)

// LowStockSweeper periodically scans the ledger for allocations at or below
// their minimum threshold and logs alerts for them.
type LowStockSweeper struct {
	scheduler gocron.Scheduler
	stockRepo repositories.StockRepository
	itemRepo  repositories.ItemRepository
	interval  time.Duration
}

func NewLowStockSweeper(stockRepo repositories.StockRepository, itemRepo repositories.ItemRepository,
	interval time.Duration) (*LowStockSweeper, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &LowStockSweeper{
		scheduler: scheduler,
		stockRepo: stockRepo,
		itemRepo:  itemRepo,
		interval:  interval,
	}, nil
}

// Start registers the sweep job and starts the scheduler.
func (s *LowStockSweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.Sweep, context.Background()),
		gocron.WithName("low-stock-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	log.Printf("Starting low stock sweeper (every %s)", s.interval)
	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *LowStockSweeper) Stop() error {
	log.Println("Stopping low stock sweeper")
	return s.scheduler.Shutdown()
}

// Sweep logs every allocation at or below its minimum threshold. Items that
// have been deactivated since the allocation was written are skipped.
func (s *LowStockSweeper) Sweep(ctx context.Context) error {
	allocations, err := s.stockRepo.ListBelowMinThreshold(ctx)
	if err != nil {
		log.Printf("Low stock sweep failed: %v", err)
		return err
	}

	if len(allocations) == 0 {
		log.Println("Low stock sweep: all allocations above minimum")
		return nil
	}

	for _, alloc := range allocations {
		item, err := s.itemRepo.GetActiveByID(ctx, alloc.ItemID)
		if err != nil {
			continue
		}
		log.Printf("ALERT: item '%s' (%s) at location %s has %d units (minimum: %d)",
			item.Name, item.SKU, alloc.LocationID.String(), alloc.Quantity, *alloc.MinThreshold)
	}

	log.Printf("Low stock sweep completed: %d allocations below minimum", len(allocations))
	return nil
}
