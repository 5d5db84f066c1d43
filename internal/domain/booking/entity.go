package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status of a stored booking
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking represents a submitted booking (matches bookings table)
type Booking struct {
	ID                uuid.UUID      `db:"id"`
	GuestID           uuid.UUID      `db:"guest_id"`
	PropertyID        uuid.UUID      `db:"property_id"`
	CheckIn           time.Time      `db:"check_in_date"`
	CheckOut          time.Time      `db:"check_out_date"`
	Guests            int            `db:"guests"`
	TotalAmount       float64        `db:"total_amount"`
	Nights            int            `db:"nights"`
	SpecialRequests   sql.NullString `db:"special_requests"`
	PaymentMethodID   uuid.NullUUID  `db:"payment_method_id"`
	PaymentMethodType string         `db:"payment_method_type"`
	Status            Status         `db:"status"`
	CreatedAt         time.Time      `db:"created_at"`

	// joined from properties on reads
	PropertyTitle string `db:"property_title"`
}

// newBooking builds the record inserted for a complete draft
func newBooking(guestID uuid.UUID, d Draft, specialRequests string, payment PaymentSelection, now time.Time) *Booking {
	b := &Booking{
		ID:                uuid.New(),
		GuestID:           guestID,
		PropertyID:        d.Property.ID,
		CheckIn:           *d.CheckIn,
		CheckOut:          *d.CheckOut,
		Guests:            d.Guests,
		TotalAmount:       d.TotalAmount(),
		Nights:            d.Nights(),
		SpecialRequests:   sql.NullString{String: specialRequests, Valid: specialRequests != ""},
		PaymentMethodType: payment.Type,
		Status:            StatusPending,
		CreatedAt:         now,
		PropertyTitle:     d.Property.Title,
	}
	if payment.MethodID != uuid.Nil {
		b.PaymentMethodID = uuid.NullUUID{UUID: payment.MethodID, Valid: true}
	}
	return b
}
