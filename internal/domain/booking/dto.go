package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/staynest/staynest-api/internal/domain/property"
)

// DraftView is the JSON shape of a draft, including derived fields
type DraftView struct {
	CheckIn     *string            `json:"check_in"`
	CheckOut    *string            `json:"check_out"`
	Guests      int                `json:"guests"`
	Property    *property.Snapshot `json:"property"`
	Nights      int                `json:"nights"`
	TotalAmount float64            `json:"total_amount"`
	State       State              `json:"state"`
}

// NewDraftView renders d
func NewDraftView(d Draft) DraftView {
	v := DraftView{
		Guests:      d.Guests,
		Property:    d.Property,
		Nights:      d.Nights(),
		TotalAmount: d.TotalAmount(),
		State:       d.State(),
	}
	if d.CheckIn != nil {
		s := d.CheckIn.Format(DateLayout)
		v.CheckIn = &s
	}
	if d.CheckOut != nil {
		s := d.CheckOut.Format(DateLayout)
		v.CheckOut = &s
	}
	return v
}

// UpdateDraftRequest for PUT /bookings/draft
type UpdateDraftRequest struct {
	CheckIn    *string    `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut   *string    `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Guests     *int       `json:"guests" validate:"omitempty,gt=0"`
	PropertyID *uuid.UUID `json:"property_id"`
}

// ReserveRequest for POST /bookings/draft/reserve
type ReserveRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	CheckIn    *string   `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut   *string   `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Guests     *int      `json:"guests" validate:"omitempty,gt=0"`
}

// SubmitRequest for POST /bookings/submit
type SubmitRequest struct {
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Country           string     `json:"country"`
	Address           string     `json:"address"`
	Password          string     `json:"password"`
	SpecialRequests   string     `json:"special_requests"`
	PaymentMethodID   *uuid.UUID `json:"payment_method_id"`
	PaymentMethodType string     `json:"payment_method_type" validate:"omitempty,payment_method_type"`
}

// Summary describes a stored booking
type Summary struct {
	ID                uuid.UUID  `json:"id"`
	PropertyID        uuid.UUID  `json:"property_id"`
	PropertyTitle     string     `json:"property_title"`
	CheckIn           string     `json:"check_in_date"`
	CheckOut          string     `json:"check_out_date"`
	Guests            int        `json:"guests"`
	Nights            int        `json:"nights"`
	TotalAmount       float64    `json:"total_amount"`
	SpecialRequests   *string    `json:"special_requests"`
	PaymentMethodID   *uuid.UUID `json:"payment_method_id,omitempty"`
	PaymentMethodType string     `json:"payment_method_type,omitempty"`
	Status            Status     `json:"status"`
	CreatedAt         string     `json:"created_at"`
}

// NewSummary renders b; title overrides the joined property title when set
func NewSummary(b *Booking, title string) Summary {
	s := Summary{
		ID:                b.ID,
		PropertyID:        b.PropertyID,
		PropertyTitle:     b.PropertyTitle,
		CheckIn:           b.CheckIn.Format(DateLayout),
		CheckOut:          b.CheckOut.Format(DateLayout),
		Guests:            b.Guests,
		Nights:            b.Nights,
		TotalAmount:       b.TotalAmount,
		PaymentMethodType: b.PaymentMethodType,
		Status:            b.Status,
		CreatedAt:         b.CreatedAt.Format(time.RFC3339),
	}
	if title != "" {
		s.PropertyTitle = title
	}
	if b.SpecialRequests.Valid {
		v := b.SpecialRequests.String
		s.SpecialRequests = &v
	}
	if b.PaymentMethodID.Valid {
		id := b.PaymentMethodID.UUID
		s.PaymentMethodID = &id
	}
	return s
}

// SubmitResponse is returned for a successful submission
type SubmitResponse struct {
	Booking Summary         `json:"booking"`
	Account *CreatedAccount `json:"account,omitempty"`
}
