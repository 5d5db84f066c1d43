package wallet

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxTopUp       = 10000
	defaultListMax = 50
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// TopUp records a pending top-up. Repeating a reference id with the same
// amount returns the original transaction.
func (s *Service) TopUp(ctx context.Context, userID uuid.UUID, amount float64, method, referenceID string) (*Transaction, error) {
	cents := amount * 100
	if amount <= 0 || amount > maxTopUp || math.Abs(cents-math.Round(cents)) > 1e-6 {
		return nil, ErrInvalidAmount
	}
	switch method {
	case "card", "crypto", "wire":
	default:
		return nil, ErrInvalidMethod
	}

	referenceID = strings.TrimSpace(referenceID)
	if referenceID == "" {
		referenceID = "topup_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	tx := &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Method:      method,
		Status:      StatusPending,
		ReferenceID: referenceID,
	}
	err := s.store.Insert(ctx, tx)
	if errors.Is(err, ErrDuplicateReference) {
		existing, getErr := s.store.GetByReference(ctx, referenceID)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil && existing.UserID == userID && existing.Amount == amount {
			return existing, nil
		}
		return nil, ErrReferenceConflict
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID.String()).Float64("amount", amount).Str("reference_id", referenceID).Msg("wallet topup recorded")
	return tx, nil
}

func (s *Service) Transactions(ctx context.Context, userID uuid.UUID) ([]*Transaction, error) {
	return s.store.ListByUser(ctx, userID, defaultListMax)
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (float64, error) {
	return s.store.CompletedBalance(ctx, userID)
}
