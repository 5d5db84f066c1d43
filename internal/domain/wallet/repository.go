package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store is the persistence used by Service
type Store interface {
	Insert(ctx context.Context, tx *Transaction) error
	GetByReference(ctx context.Context, referenceID string) (*Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Transaction, error)
	CompletedBalance(ctx context.Context, userID uuid.UUID) (float64, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert records a transaction. A reused reference id yields ErrDuplicateReference.
func (r *Repository) Insert(ctx context.Context, tx *Transaction) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, amount, method, status, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, tx.ID, tx.UserID, tx.Amount, tx.Method, string(tx.Status), tx.ReferenceID).Scan(&tx.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return fmt.Errorf("wallet repository insert: %w", err)
	}
	return nil
}

// GetByReference returns the transaction with referenceID, or nil
func (r *Repository) GetByReference(ctx context.Context, referenceID string) (*Transaction, error) {
	var tx Transaction
	err := r.db.GetContext(ctx, &tx, `
		SELECT id, user_id, amount, method, status, reference_id, created_at
		FROM wallet_transactions
		WHERE reference_id = $1
	`, referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByUser returns the newest transactions first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Transaction, error) {
	var txs []*Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, user_id, amount, method, status, reference_id, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	return txs, err
}

// CompletedBalance sums settled transactions
func (r *Repository) CompletedBalance(ctx context.Context, userID uuid.UUID) (float64, error) {
	var balance float64
	err := r.db.GetContext(ctx, &balance, `
		SELECT COALESCE(SUM(amount), 0)
		FROM wallet_transactions
		WHERE user_id = $1 AND status = $2
	`, userID, string(StatusCompleted))
	return balance, err
}
