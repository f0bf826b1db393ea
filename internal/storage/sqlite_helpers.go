package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/good-yellow-bee/timesheet/internal/metrics"
)

// dateLayout is the storage format for calendar dates.
const dateLayout = "2006-01-02"

// wrapErr wraps a storage error, converting SQLite constraint violations
// into ConstraintError so callers can distinguish them.
func wrapErr(op string, err error) error {
	metrics.StorageErrors.WithLabelValues(op).Inc()
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return &ConstraintError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// timeQuery records query latency for an operation.
func timeQuery(op string, start time.Time) {
	metrics.StorageQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// dateArg converts an optional date to a storage argument.
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

// scanDate parses an optional stored date.
func scanDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", ns.String, err)
	}
	return &t, nil
}

// scanRequiredDate parses a stored non-null date.
func scanRequiredDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
