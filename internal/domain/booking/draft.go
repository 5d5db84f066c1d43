package booking

import (
	"math"
	"time"

	"github.com/staynest/staynest-api/internal/domain/property"
)

// DateLayout is the calendar-date format used on the wire and in storage
const DateLayout = "2006-01-02"

// State is the externally visible stage of a draft
type State string

const (
	StateEmpty    State = "empty"
	StatePartial  State = "partial"
	StateComplete State = "complete"
)

// Draft is an in-progress booking. Nights and TotalAmount are always derived
// from the dates and the property snapshot, never stored.
type Draft struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Guests   int
	Property *property.Snapshot
}

// NewDraft returns an empty draft for a single guest
func NewDraft() Draft {
	return Draft{Guests: 1}
}

// Nights is ceil((checkOut - checkIn) / 1 day), or 0 while dates are incomplete
func (d Draft) Nights() int {
	if d.CheckIn == nil || d.CheckOut == nil {
		return 0
	}
	diff := d.CheckOut.Sub(*d.CheckIn)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// TotalAmount is nights * nightly price plus cleaning and service fees,
// rounded to cents. A draft without a property costs nothing.
func (d Draft) TotalAmount() float64 {
	if d.Property == nil {
		return 0
	}
	p := d.Property
	total := float64(d.Nights())*p.PricePerNight + p.CleaningFee + p.ServiceFee
	return math.Round(total*100) / 100
}

// State classifies the draft
func (d Draft) State() State {
	switch {
	case d.Property == nil:
		return StateEmpty
	case d.CheckIn != nil && d.CheckOut != nil && d.Guests >= 1 && d.Nights() > 0:
		return StateComplete
	default:
		return StatePartial
	}
}

// Clone returns a copy that shares nothing with d
func (d Draft) Clone() Draft {
	c := Draft{Guests: d.Guests, Property: d.Property.Clone()}
	if d.CheckIn != nil {
		t := *d.CheckIn
		c.CheckIn = &t
	}
	if d.CheckOut != nil {
		t := *d.CheckOut
		c.CheckOut = &t
	}
	return c
}

// DraftPatch carries the fields of an edit; nil fields keep their current value
type DraftPatch struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Guests   *int
	Property *property.Snapshot
}

// apply merges p into d and checks the result
func (p DraftPatch) apply(d Draft) (Draft, error) {
	next := d.Clone()
	if p.CheckIn != nil {
		t := calendarDate(*p.CheckIn)
		next.CheckIn = &t
	}
	if p.CheckOut != nil {
		t := calendarDate(*p.CheckOut)
		next.CheckOut = &t
	}
	if p.Guests != nil {
		if *p.Guests < 1 {
			return d, ErrInvalidGuests
		}
		next.Guests = *p.Guests
	}
	if p.Property != nil {
		if !p.Property.IsActive {
			return d, property.ErrPropertyInactive
		}
		next.Property = p.Property.Clone()
	}

	if next.CheckIn != nil && next.CheckOut != nil && !next.CheckOut.After(*next.CheckIn) {
		return d, ErrInvalidDates
	}
	if next.Property != nil && !next.Property.AcceptsGuests(next.Guests) {
		return d, ErrTooManyGuests
	}
	return next, nil
}

// calendarDate drops the time of day, keeping the date as written
func calendarDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a yyyy-MM-dd calendar date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
