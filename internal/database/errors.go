package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateProblemNumber = errors.New("problem number already exists")
	ErrMissingField           = errors.New("missing required field")
	ErrSnapshotCorrupted      = errors.New("stored snapshot is corrupted")
	ErrInvalidImage           = errors.New("not a problem tracker database")
	ErrNumberSpaceExhausted   = errors.New("problem number sequence exhausted")
)

const (
	EntityProblem  = "problem"
	EntityDatabase = "database"
)

type OpError struct {
	Op       string
	Resource string
	ID       int64
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID > 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// ImportRowError reports the spreadsheet row that aborted an import batch.
// Row is 1-based and excludes the header.
type ImportRowError struct {
	Row    int
	Number string
	Err    error
}

func (e *ImportRowError) Error() string {
	if e.Number != "" {
		return fmt.Sprintf("row %d (%s): %v", e.Row, e.Number, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportRowError) Unwrap() error { return e.Err }

func wrapErr(resource, op string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: %v", ErrDuplicateProblemNumber, err)
	}
	return &OpError{Op: op, Resource: resource, ID: id, Err: err}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isIgnorableMigrationErr(err error) bool {
	if err == nil {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
