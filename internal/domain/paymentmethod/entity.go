package paymentmethod

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCard   Type = "card"
	TypeCrypto Type = "crypto"
	TypeWire   Type = "wire"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCard, TypeCrypto, TypeWire:
		return true
	}
	return false
}

// Method is a saved payment method. Card numbers are never stored,
// only the brand and the last four digits.
type Method struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Type      Type      `db:"type"`
	Brand     string    `db:"brand"`
	Last4     string    `db:"last4"`
	Label     string    `db:"label"`
	IsDefault bool      `db:"is_default"`
	CreatedAt time.Time `db:"created_at"`
}
