package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

const shiftColumns = "id, name, start_time, end_time, COALESCE(slot, '') AS slot, created_at"

// ShiftRepository reads and writes the shift reference list.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs a shift repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// List returns every shift ordered by start time.
func (r *ShiftRepository) List(ctx context.Context) ([]models.Shift, error) {
	query := fmt.Sprintf("SELECT %s FROM shifts ORDER BY start_time ASC, name ASC", shiftColumns)
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// FindByID returns a shift by id.
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	query := fmt.Sprintf("SELECT %s FROM shifts WHERE id = $1", shiftColumns)
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// Create persists a shift with its slot tag.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO shifts (id, name, start_time, end_time, slot, created_at) VALUES (:id, :name, :start_time, :end_time, :slot, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}
