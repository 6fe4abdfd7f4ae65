package repository

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"vehicle-ticket-service/internal/domain/ticket"
)

// classify wraps a driver/gorm error into a StoreError so callers can tell
// "no access" from "already removed".
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *ticket.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &ticket.StoreError{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) ticket.StoreErrorKind {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ticket.StoreNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501":
			return ticket.StorePermissionDenied
		case "23505", "40001", "40P01":
			return ticket.StoreConflict
		case "08000", "08003", "08006", "53300", "57P01", "57P03":
			return ticket.StoreUnavailable
		}
		return ticket.StoreUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) {
		return ticket.StoreUnavailable
	}
	return ticket.StoreUnknown
}

func notFound(op string) error {
	return &ticket.StoreError{Op: op, Kind: ticket.StoreNotFound}
}
