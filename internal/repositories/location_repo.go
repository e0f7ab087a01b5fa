package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	GetByPath(ctx context.Context, path string) (*models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includeInactive bool) ([]*models.Location, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	HasStock(ctx context.Context, id uuid.UUID) (bool, error)
}

type locationRepo struct {
	db DBTX
}

func NewLocationRepo(db DBTX) LocationRepository {
	return &locationRepo{db: db}
}

const locationColumns = `id, name, type, parent_id, path, level, is_active, created_at, updated_at`

func scanLocation(row pgx.Row) (*models.Location, error) {
	loc := &models.Location{}
	err := row.Scan(&loc.ID, &loc.Name, &loc.Type, &loc.ParentID, &loc.Path,
		&loc.Level, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, name, type, parent_id, path, level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, location.ID, location.Name, location.Type,
		location.ParentID, location.Path, location.Level)
	return err
}

func (r *locationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	loc, err := scanLocation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("location")
	}
	return loc, err
}

func (r *locationRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1 AND is_active = TRUE`
	loc, err := scanLocation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("location")
	}
	return loc, err
}

func (r *locationRepo) GetByPath(ctx context.Context, path string) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE path = $1`
	loc, err := scanLocation(r.db.QueryRow(ctx, query, path))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("location")
	}
	return loc, err
}

func (r *locationRepo) Update(ctx context.Context, location *models.Location) error {
	query := `
		UPDATE locations
		SET name = $1, type = $2, path = $3, level = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, location.Name, location.Type, location.Path,
		location.Level, location.IsActive, location.ID)
	return err
}

func (r *locationRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE locations SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *locationRepo) List(ctx context.Context, includeInactive bool) ([]*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY path ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		loc := &models.Location{}
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Type, &loc.ParentID, &loc.Path,
			&loc.Level, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *locationRepo) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM locations WHERE parent_id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *locationRepo) HasStock(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM item_locations WHERE location_id = $1 AND quantity <> 0)`
	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}
