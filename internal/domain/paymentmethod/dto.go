package paymentmethod

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest is the body of POST /payment-methods
type CreateRequest struct {
	Type        string `json:"type" validate:"required,payment_method_type"`
	CardNumber  string `json:"card_number" validate:"required_if=Type card,max=25"`
	Label       string `json:"label" validate:"max=100"`
	MakeDefault bool   `json:"make_default"`
}

type MethodResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Brand     string    `json:"brand,omitempty"`
	Last4     string    `json:"last4,omitempty"`
	Label     string    `json:"label"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMethodResponse(m *Method) MethodResponse {
	return MethodResponse{
		ID:        m.ID,
		Type:      string(m.Type),
		Brand:     m.Brand,
		Last4:     m.Last4,
		Label:     m.Label,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
	}
}
