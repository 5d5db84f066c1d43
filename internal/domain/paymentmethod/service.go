package paymentmethod

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/staynest/staynest-api/internal/domain/booking"
	"github.com/staynest/staynest-api/internal/pkg/sanitize"
)

// AddInput describes a method to save
type AddInput struct {
	Type        Type
	CardNumber  string
	Label       string
	MakeDefault bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Method, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add saves a method. The user's first method becomes the default.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, in AddInput) (*Method, error) {
	m := &Method{
		ID:     uuid.New(),
		UserID: userID,
		Type:   in.Type,
		Label:  sanitize.Text(in.Label),
	}

	switch in.Type {
	case TypeCard:
		if !sanitize.CreditCard(in.CardNumber) {
			return nil, ErrInvalidCard
		}
		digits := digitsOnly(in.CardNumber)
		m.Brand = cardBrand(digits)
		m.Last4 = digits[len(digits)-4:]
		if m.Label == "" {
			m.Label = m.Brand + " •••• " + m.Last4
		}
	case TypeCrypto, TypeWire:
		if m.Label == "" {
			return nil, ErrLabelRequired
		}
	default:
		return nil, ErrInvalidType
	}

	existing, err := s.repo.GetDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	m.IsDefault = in.MakeDefault || existing == nil

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID.String()).Str("type", string(m.Type)).Bool("default", m.IsDefault).Msg("payment method added")
	return m, nil
}

// Default returns the user's default method
func (s *Service) Default(ctx context.Context, userID uuid.UUID) (*Method, error) {
	m, err := s.repo.GetDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMethodNotFound
	}
	return m, nil
}

func (s *Service) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.SetDefault(ctx, userID, id)
}

// Resolve looks up a saved method for a booking submission. A nil id
// selects the default method.
func (s *Service) Resolve(ctx context.Context, userID, methodID uuid.UUID) (booking.PaymentSelection, bool, error) {
	var (
		m   *Method
		err error
	)
	if methodID == uuid.Nil {
		m, err = s.repo.GetDefault(ctx, userID)
	} else {
		m, err = s.repo.GetByID(ctx, userID, methodID)
	}
	if err != nil {
		return booking.PaymentSelection{}, false, err
	}
	if m == nil {
		return booking.PaymentSelection{}, false, nil
	}
	return booking.PaymentSelection{MethodID: m.ID, Type: string(m.Type)}, true, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cardBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "amex"
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return "discover"
	}
	if len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5' {
		return "mastercard"
	}
	if len(digits) >= 4 {
		if p := digits[:4]; p >= "2221" && p <= "2720" {
			return "mastercard"
		}
	}
	return "card"
}
