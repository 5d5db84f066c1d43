package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const sqlStateForeignKeyViolation = "23503"

// Repository stores submitted bookings
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*Booking, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts a booking. Dates are stored as calendar dates.
func (r *repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (
			id, guest_id, property_id, check_in_date, check_out_date, guests,
			total_amount, nights, special_requests, payment_method_id, payment_method_type, status, created_at
		) VALUES (
			:id, :guest_id, :property_id, :check_in_date, :check_out_date, :guests,
			:total_amount, :nights, :special_requests, :payment_method_id, :payment_method_type, :status, :created_at
		)
	`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateForeignKeyViolation && pqErr.Constraint == "bookings_property_id_fkey" {
			return fmt.Errorf("booking repository create: %w", &RejectedError{Message: "property is no longer available"})
		}
		return fmt.Errorf("booking repository create: %w", err)
	}
	return nil
}

// ListByGuest returns the guest's bookings, newest first
func (r *repository) ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*Booking, error) {
	query := `
		SELECT b.id, b.guest_id, b.property_id, b.check_in_date, b.check_out_date, b.guests,
		       b.total_amount, b.nights, b.special_requests, b.payment_method_id, b.payment_method_type,
		       b.status, b.created_at, p.title AS property_title
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE b.guest_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var bookings []*Booking
	if err := r.db.SelectContext(ctx, &bookings, query, guestID, limit, offset); err != nil {
		return nil, fmt.Errorf("booking repository list: %w", err)
	}
	return bookings, nil
}
