package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes that indicate the statement lost a race rather than
// hit a logic error: lock_not_available, deadlock_detected,
// serialization_failure, query_canceled.
var transientCodes = map[string]bool{
	"55P03": true,
	"40P01": true,
	"40001": true,
	"57014": true,
}

// IsTransient reports whether err is worth retrying by the caller.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientCodes[pgErr.Code]
	}
	return false
}
