package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// QuotaError indicates the database ran out of space.
type QuotaError struct {
	Op  string
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: storage full: %v", e.Op, e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// ConstraintError indicates a uniqueness or integrity violation on write.
type ConstraintError struct {
	Op  string
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: constraint violation: %v", e.Op, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IOError is any other storage failure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// classify wraps a database error into one of the store error kinds.
// A nil err stays nil; an already-classified err is returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		qe *QuotaError
		ce *ConstraintError
		ie *IOError
	)
	if errors.As(err, &qe) || errors.As(err, &ce) || errors.As(err, &ie) {
		return err
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_FULL:
			return &QuotaError{Op: op, Err: err}
		case sqlite3.SQLITE_CONSTRAINT:
			return &ConstraintError{Op: op, Err: err}
		}
	}
	return &IOError{Op: op, Err: err}
}

// UserMessage turns a store error into an actionable message for the user.
func UserMessage(err error) string {
	var (
		qe *QuotaError
		ce *ConstraintError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &qe):
		return "Storage is full and your progress may not be saved. Export your data and free some disk space."
	case errors.As(err, &ce):
		return fmt.Sprintf("The data could not be saved because it conflicts with existing records: %v", ce.Err)
	default:
		return fmt.Sprintf("Saving failed: %v. Your last answer may not be stored; export your data to be safe.", err)
	}
}
