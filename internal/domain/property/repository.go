package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository reads property snapshots
type Repository interface {
	GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new property repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetSnapshot returns the pricing fields of a property
func (r *repository) GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	query := `
		SELECT id, title, price_per_night, cleaning_fee, service_fee, max_guests, is_active, property_type, images
		FROM properties WHERE id = $1
	`
	var s Snapshot
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("property repository get snapshot: %w", err)
	}
	return &s, nil
}
