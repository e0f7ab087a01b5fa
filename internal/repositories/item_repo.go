package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetBySKU(ctx context.Context, sku string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]*models.Item, error)
	Categories(ctx context.Context) ([]string, error)
}

type itemRepo struct {
	db DBTX
}

func NewItemRepo(db DBTX) ItemRepository {
	return &itemRepo{db: db}
}

const itemColumns = `id, sku, name, unit, barcode, category, description, is_active, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.SKU, &item.Name, &item.Unit, &item.Barcode,
		&item.Category, &item.Description, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, sku, name, unit, barcode, category, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.SKU, item.Name, item.Unit,
		item.Barcode, item.Category, item.Description)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("item")
	}
	return item, err
}

func (r *itemRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND is_active = TRUE`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("item")
	}
	return item, err
}

func (r *itemRepo) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE sku = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("item")
	}
	return item, err
}

// Update never touches the sku column; SKUs are immutable after creation.
func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, unit = $2, barcode = $3, category = $4, description = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, item.Name, item.Unit, item.Barcode,
		item.Category, item.Description, item.IsActive, item.ID)
	return err
}

func (r *itemRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE items SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *itemRepo) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.SKU, &item.Name, &item.Unit, &item.Barcode,
			&item.Category, &item.Description, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *itemRepo) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category FROM items
		WHERE category IS NOT NULL AND is_active = TRUE
		ORDER BY category ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
