package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stocktrail/internal/models"
)

// StockRepository is the stock ledger: the authoritative quantity per
// (item, location) pair. ApplyDelta is its only mutating entry point for
// quantities; everything else is read or threshold maintenance.
type StockRepository interface {
	// GetQuantity returns the current on-hand quantity, 0 when no row exists.
	GetQuantity(ctx context.Context, itemID, locationID uuid.UUID) (int, error)
	// ApplyDelta atomically adds delta to the pair's quantity and returns the
	// new value. The add happens inside a single statement so concurrent
	// approvals against the same pair serialize on the row.
	ApplyDelta(ctx context.Context, itemID, locationID uuid.UUID, delta int) (int, error)
	GetAllocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.StockAllocation, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.StockAllocation, error)
	UpsertThresholds(ctx context.Context, itemID, locationID uuid.UUID, minThreshold, maxThreshold *int) error
	ListBelowMinThreshold(ctx context.Context) ([]*models.StockAllocation, error)
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx pgx.Tx) StockRepository
}

type stockRepo struct {
	db DBTX
}

func NewStockRepo(db DBTX) StockRepository {
	return &stockRepo{db: db}
}

func (r *stockRepo) WithTx(tx pgx.Tx) StockRepository {
	return &stockRepo{db: tx}
}

func (r *stockRepo) GetQuantity(ctx context.Context, itemID, locationID uuid.UUID) (int, error) {
	query := `SELECT quantity FROM item_locations WHERE item_id = $1 AND location_id = $2`
	var quantity int
	err := r.db.QueryRow(ctx, query, itemID, locationID).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

func (r *stockRepo) ApplyDelta(ctx context.Context, itemID, locationID uuid.UUID, delta int) (int, error) {
	// Negative results are permitted; overselling is a policy concern, not a
	// ledger invariant.
	query := `
		INSERT INTO item_locations (id, item_id, location_id, quantity, last_updated)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = item_locations.quantity + EXCLUDED.quantity, last_updated = NOW()
		RETURNING quantity
	`
	var newQuantity int
	err := r.db.QueryRow(ctx, query, uuid.New(), itemID, locationID, delta).Scan(&newQuantity)
	if err != nil {
		return 0, err
	}
	return newQuantity, nil
}

func (r *stockRepo) GetAllocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.StockAllocation, error) {
	query := `
		SELECT id, item_id, location_id, quantity, min_threshold, max_threshold, last_updated
		FROM item_locations
		WHERE item_id = $1 AND location_id = $2
	`
	alloc := &models.StockAllocation{}
	err := r.db.QueryRow(ctx, query, itemID, locationID).Scan(&alloc.ID, &alloc.ItemID,
		&alloc.LocationID, &alloc.Quantity, &alloc.MinThreshold, &alloc.MaxThreshold, &alloc.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

func (r *stockRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.StockAllocation, error) {
	query := `
		SELECT id, item_id, location_id, quantity, min_threshold, max_threshold, last_updated
		FROM item_locations
		WHERE item_id = $1
		ORDER BY last_updated DESC
	`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAllocations(rows)
}

func (r *stockRepo) UpsertThresholds(ctx context.Context, itemID, locationID uuid.UUID, minThreshold, maxThreshold *int) error {
	query := `
		INSERT INTO item_locations (id, item_id, location_id, quantity, min_threshold, max_threshold, last_updated)
		VALUES ($1, $2, $3, 0, $4, $5, NOW())
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET min_threshold = EXCLUDED.min_threshold, max_threshold = EXCLUDED.max_threshold, last_updated = NOW()
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), itemID, locationID, minThreshold, maxThreshold)
	return err
}

func (r *stockRepo) ListBelowMinThreshold(ctx context.Context) ([]*models.StockAllocation, error) {
	query := `
		SELECT id, item_id, location_id, quantity, min_threshold, max_threshold, last_updated
		FROM item_locations
		WHERE min_threshold IS NOT NULL AND quantity < min_threshold
		ORDER BY last_updated DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAllocations(rows)
}

func scanAllocations(rows pgx.Rows) ([]*models.StockAllocation, error) {
	var allocations []*models.StockAllocation
	for rows.Next() {
		alloc := &models.StockAllocation{}
		if err := rows.Scan(&alloc.ID, &alloc.ItemID, &alloc.LocationID, &alloc.Quantity,
			&alloc.MinThreshold, &alloc.MaxThreshold, &alloc.LastUpdated); err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
	}
	return allocations, rows.Err()
}
