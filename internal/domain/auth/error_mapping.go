package auth

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	sqlStateUniqueViolation = "23505"
)

func isEmailAlreadyExistsError(err error) bool {
	if errors.Is(err, ErrEmailAlreadyExists) {
		return true
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != sqlStateUniqueViolation {
		return false
	}
	if pqErr.Constraint == "users_email_key" {
		return true
	}
	return pqErr.Table == "users" && pqErr.Column == "email"
}

func wrapRegisterError(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("register step %s: %w", step, err)
}
