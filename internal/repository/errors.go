package repository

import (
	"errors"
	"fmt"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// conflictOr reports lock and serialization failures as
// domain.ErrConcurrentUpdate and wraps anything else with op.
func conflictOr(op string, err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%s: %w", op, domain.ErrConcurrentUpdate)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
