package paymentmethod

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment method data access
type Repository interface {
	Create(ctx context.Context, m *Method) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Method, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Method, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*Method, error)
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment method repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `id, user_id, type, brand, last4, label, is_default, created_at`

// Create inserts m. A default method replaces the user's previous default.
func (r *repository) Create(ctx context.Context, m *Method) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if m.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1 AND is_default`, m.UserID); err != nil {
			return fmt.Errorf("payment method clear default: %w", err)
		}
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO payment_methods (id, user_id, type, brand, last4, label, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, m.ID, m.UserID, m.Type, m.Brand, m.Last4, m.Label, m.IsDefault).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("payment method create: %w", err)
	}

	return tx.Commit()
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Method, error) {
	var methods []*Method
	query := `SELECT ` + selectColumns + ` FROM payment_methods WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &methods, query, userID); err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *repository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Method, error) {
	query := `SELECT ` + selectColumns + ` FROM payment_methods WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *repository) GetDefault(ctx context.Context, userID uuid.UUID) (*Method, error) {
	query := `SELECT ` + selectColumns + ` FROM payment_methods WHERE user_id = $1 AND is_default`
	return r.getOne(ctx, query, userID)
}

func (r *repository) getOne(ctx context.Context, query string, args ...interface{}) (*Method, error) {
	var m Method
	err := r.db.GetContext(ctx, &m, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// SetDefault marks id as the user's only default method
func (r *repository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`, userID, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMethodNotFound
	}

	return tx.Commit()
}
