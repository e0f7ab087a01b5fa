package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
)

// MovementRepository persists stock movement records. Rows are never
// physically deleted; queries filter on is_active so rows retired by
// schema maintenance stay out of results.
type MovementRepository interface {
	Create(ctx context.Context, movement *models.StockMovement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StockMovement, error)
	List(ctx context.Context, filter *models.MovementFilter) ([]*models.StockMovement, error)
	ListPending(ctx context.Context) ([]*models.StockMovement, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error)
	// MarkResolved sets the terminal status on a movement only if it is still
	// pending, as a single conditional update. It returns the updated row, or
	// pgx.ErrNoRows when the movement was absent, inactive, or already
	// terminal; the caller disambiguates.
	MarkResolved(ctx context.Context, id uuid.UUID, status models.MovementStatus, resolvedBy uuid.UUID) (*models.StockMovement, error)
	GetPairByReference(ctx context.Context, transferReference string) ([]*models.StockMovement, error)
	SetAttachmentURL(ctx context.Context, id uuid.UUID, url string) error
	WithTx(tx pgx.Tx) MovementRepository
}

type movementRepo struct {
	db DBTX
}

func NewMovementRepo(db DBTX) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) WithTx(tx pgx.Tx) MovementRepository {
	return &movementRepo{db: tx}
}

const movementColumns = `id, item_id, location_id, movement_type, quantity, before_quantity, after_quantity,
	unit_cost, total_value, batch_number, serial_number, reference_number, reason, notes, attachment_url,
	status, transfer_reference, created_by, approved_by, approved_at, is_active, created_at`

func scanMovement(row pgx.Row) (*models.StockMovement, error) {
	m := &models.StockMovement{}
	err := row.Scan(&m.ID, &m.ItemID, &m.LocationID, &m.MovementType, &m.Quantity,
		&m.BeforeQuantity, &m.AfterQuantity, &m.UnitCost, &m.TotalValue, &m.BatchNumber,
		&m.SerialNumber, &m.ReferenceNumber, &m.Reason, &m.Notes, &m.AttachmentURL,
		&m.Status, &m.TransferReference, &m.CreatedBy, &m.ApprovedBy, &m.ApprovedAt,
		&m.IsActive, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scanMovements(rows pgx.Rows) ([]*models.StockMovement, error) {
	var movements []*models.StockMovement
	for rows.Next() {
		m := &models.StockMovement{}
		if err := rows.Scan(&m.ID, &m.ItemID, &m.LocationID, &m.MovementType, &m.Quantity,
			&m.BeforeQuantity, &m.AfterQuantity, &m.UnitCost, &m.TotalValue, &m.BatchNumber,
			&m.SerialNumber, &m.ReferenceNumber, &m.Reason, &m.Notes, &m.AttachmentURL,
			&m.Status, &m.TransferReference, &m.CreatedBy, &m.ApprovedBy, &m.ApprovedAt,
			&m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *movementRepo) Create(ctx context.Context, movement *models.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, item_id, location_id, movement_type, quantity, before_quantity, after_quantity,
			unit_cost, total_value, batch_number, serial_number, reference_number, reason, notes, attachment_url,
			status, transfer_reference, created_by, approved_by, approved_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, TRUE, NOW())
	`
	_, err := r.db.Exec(ctx, query, movement.ID, movement.ItemID, movement.LocationID,
		movement.MovementType, movement.Quantity, movement.BeforeQuantity, movement.AfterQuantity,
		movement.UnitCost, movement.TotalValue, movement.BatchNumber, movement.SerialNumber,
		movement.ReferenceNumber, movement.Reason, movement.Notes, movement.AttachmentURL,
		movement.Status, movement.TransferReference, movement.CreatedBy, movement.ApprovedBy,
		movement.ApprovedAt)
	return err
}

func (r *movementRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1 AND is_active = TRUE`
	m, err := scanMovement(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("movement")
	}
	return m, err
}

func (r *movementRepo) List(ctx context.Context, filter *models.MovementFilter) ([]*models.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE is_active = TRUE`
	args := []any{}
	argn := 0

	next := func() int {
		argn++
		return argn
	}

	if filter.ItemID != nil {
		query += fmt.Sprintf(` AND item_id = $%d`, next())
		args = append(args, *filter.ItemID)
	}
	if filter.LocationID != nil {
		query += fmt.Sprintf(` AND location_id = $%d`, next())
		args = append(args, *filter.LocationID)
	}
	if filter.MovementType != nil {
		query += fmt.Sprintf(` AND movement_type = $%d`, next())
		args = append(args, *filter.MovementType)
	}
	if filter.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, next())
		args = append(args, *filter.Status)
	}
	if filter.FromDate != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, next())
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		query += fmt.Sprintf(` AND created_at <= $%d`, next())
		args = append(args, *filter.ToDate)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, next(), next())
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMovements(rows)
}

// ListPending returns the FIFO review queue, oldest first.
func (r *movementRepo) ListPending(ctx context.Context) ([]*models.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE status = 'pending' AND is_active = TRUE
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMovements(rows)
}

func (r *movementRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM stock_movements WHERE item_id = $1 AND is_active = TRUE`
	if err := r.db.QueryRow(ctx, countQuery, itemID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE item_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	movements, err := scanMovements(rows)
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

func (r *movementRepo) MarkResolved(ctx context.Context, id uuid.UUID, status models.MovementStatus, resolvedBy uuid.UUID) (*models.StockMovement, error) {
	query := `
		UPDATE stock_movements
		SET status = $1, approved_by = $2, approved_at = NOW()
		WHERE id = $3 AND status = 'pending' AND is_active = TRUE
		RETURNING ` + movementColumns + `
	`
	return scanMovement(r.db.QueryRow(ctx, query, status, resolvedBy, id))
}

func (r *movementRepo) GetPairByReference(ctx context.Context, transferReference string) ([]*models.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE transfer_reference = $1 AND is_active = TRUE
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, transferReference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMovements(rows)
}

// SetAttachmentURL is the only mutation allowed on a terminal movement.
func (r *movementRepo) SetAttachmentURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE stock_movements SET attachment_url = $1 WHERE id = $2 AND is_active = TRUE`
	tag, err := r.db.Exec(ctx, query, url, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("movement")
	}
	return nil
}

