package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lib/pq"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqSerialization       = "40001"
	pqDeadlock            = "40P01"
	pqCannotConnectNow    = "57P03"
	pqTooManyConnections  = "53300"
	pqClassConnection     = "08"
)

// Options bound every store call.
type Options struct {
	QueryTimeout time.Duration
	MaxRetries   int
}

func (o Options) withDefaults() Options {
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 3 * time.Second
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = 3
	}
	return o
}

func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.QueryTimeout)
}

// mapError classifies driver failures. Domain errors pass through untouched.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Transient("store timed out", wrapped)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return domain.Transient("store unavailable", wrapped)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.Transient("store unavailable", wrapped)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == pqClassConnection,
			pqErr.Code == pqCannotConnectNow,
			pqErr.Code == pqTooManyConnections:
			return domain.Transient("store unavailable", wrapped)
		case pqErr.Code == pqSerialization, pqErr.Code == pqDeadlock:
			return domain.Transient("concurrent update, please retry", wrapped)
		}
	}
	return wrapped
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func isRetryable(err error) bool {
	return hasCode(err, pqSerialization) || hasCode(err, pqDeadlock) || hasCode(err, pqUniqueViolation)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
