package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgreSQL error codes this package reacts to.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	ErrCodeUniqueViolation     = "23505"
	ErrCodeForeignKeyViolation = "23503"
	ErrCodeNotNullViolation    = "23502"
	ErrCodeCheckViolation      = "23514"
	ErrCodeUndefinedTable      = "42P01"
	ErrCodeTooManyConnections  = "53300"
)

// Error wraps a failed statement with the operation and table involved.
type Error struct {
	Operation string
	Table     string
	Code      string
	Message   string
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	var parts []string
	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("operation=%s", e.Operation))
	}
	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	msg := e.Message
	if len(parts) > 0 {
		msg = fmt.Sprintf("%s [%s]", msg, strings.Join(parts, ", "))
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s - Detail: %s", msg, e.Detail)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError returns nil for a nil err.
func wrapError(err error, operation, table string) error {
	if err == nil {
		return nil
	}

	pgErr := &Error{
		Operation: operation,
		Table:     table,
		Message:   err.Error(),
		Err:       err,
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		pgErr.Code = string(pqErr.Code)
		pgErr.Message = pqErr.Message
		pgErr.Detail = pqErr.Detail
	}
	return pgErr
}

func hasErrorCode(err error, code string) bool {
	var pgErr *Error
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

func IsUniqueViolation(err error) bool {
	return hasErrorCode(err, ErrCodeUniqueViolation)
}

// IsForeignKeyViolation reports an order item pointing at an unknown order
// or product.
func IsForeignKeyViolation(err error) bool {
	return hasErrorCode(err, ErrCodeForeignKeyViolation)
}

func IsUndefinedTable(err error) bool {
	return hasErrorCode(err, ErrCodeUndefinedTable)
}
