package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrForeignKeysDisabled = errors.New("foreign key enforcement is disabled on this connection")
	ErrUnknownTable        = errors.New("unknown table")
	ErrNoRuns              = errors.New("no ingestion run recorded")
)

// Constraint kinds reported by IntegrityViolation.
const (
	ConstraintForeignKey = "foreign key"
	ConstraintPrimaryKey = "primary key"
	ConstraintNotNull    = "not null"
	ConstraintCheck      = "check"
	ConstraintOther      = "constraint"
)

// IntegrityViolation is returned when a row breaks a key or check constraint
// during a load. The whole load is rolled back.
type IntegrityViolation struct {
	Table      string
	Key        string
	Constraint string
	Err        error
}

func (e *IntegrityViolation) Error() string {
	return fmt.Sprintf("integrity violation (%s) in table %s for key %s: %v", e.Constraint, e.Table, e.Key, e.Err)
}

func (e *IntegrityViolation) Unwrap() error {
	return e.Err
}

// constraintKind classifies a driver error. ok is false when err is not a
// constraint failure.
func constraintKind(err error) (kind string, ok bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return "", false
	}

	code := se.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return "", false
	}

	switch code {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ConstraintForeignKey, true
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_ROWID:
		return ConstraintPrimaryKey, true
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return ConstraintNotNull, true
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return ConstraintCheck, true
	default:
		return ConstraintOther, true
	}
}
