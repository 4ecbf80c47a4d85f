package crud

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Errors returned by stores. Route handlers map them to HTTP statuses.
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDoesExist is returned when a record with the same key already exists
	ErrDoesExist = errors.New("record does exist")

	// ErrIsReference is returned when a record cannot be removed because
	// other records reference it
	ErrIsReference = errors.New("record is referenced")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ConvertDBError converts database-specific errors to store errors
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	// PostgreSQL through pgx
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDoesExist, pgErr.Detail)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrIsReference, pgErr.Detail)
		}
	}

	// PostgreSQL through lib/pq
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDoesExist, pqErr.Detail)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrIsReference, pqErr.Detail)
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", ErrDoesExist, liteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", ErrIsReference, liteErr.Error())
		}
	}

	return err
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDoesExist returns true if the error is ErrDoesExist
func IsDoesExist(err error) bool {
	return errors.Is(err, ErrDoesExist)
}

// IsReference returns true if the error is ErrIsReference
func IsReference(err error) bool {
	return errors.Is(err, ErrIsReference)
}
