package property

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Snapshot is the denormalized copy of listing fields a booking needs for pricing.
// Once captured into a draft it is owned by that draft.
type Snapshot struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	PricePerNight float64        `db:"price_per_night" json:"price_per_night"`
	CleaningFee   float64        `db:"cleaning_fee" json:"cleaning_fee"`
	ServiceFee    float64        `db:"service_fee" json:"service_fee"`
	MaxGuests     int            `db:"max_guests" json:"max_guests"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	Type          string         `db:"property_type" json:"property_type"`
	Images        pq.StringArray `db:"images" json:"images"`
}

// Clone returns a deep copy so callers never share the image slice
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Images != nil {
		c.Images = append(pq.StringArray(nil), s.Images...)
	}
	return &c
}

// AcceptsGuests reports whether n guests fit the listing
func (s *Snapshot) AcceptsGuests(n int) bool {
	return n >= 1 && (s.MaxGuests <= 0 || n <= s.MaxGuests)
}
