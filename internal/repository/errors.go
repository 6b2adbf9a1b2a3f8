package repository

import (
	"context"
	"errors"

	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes that map to something other than internal.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
	pgAdminShutdown        = "57P01"
	pgCannotConnectNow     = "57P03"
)

// storeError classifies a driver error. Lock and serialization failures
// surface as conflicts so callers can retry, lost connections as
// unavailable, and everything else as internal.
func storeError(err error, msg string) *appErr.AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return appErr.Wrap(err, appErr.CodeDeadline, msg)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return appErr.Wrap(err, appErr.CodeUnavailable, msg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return appErr.Wrap(err, appErr.CodeConflict, msg).WithMeta("sqlstate", pgErr.Code)
		case pgQueryCanceled:
			return appErr.Wrap(err, appErr.CodeDeadline, msg)
		case pgAdminShutdown, pgCannotConnectNow:
			return appErr.Wrap(err, appErr.CodeUnavailable, msg)
		}
	}
	return appErr.Wrap(err, appErr.CodeInternal, msg)
}
