package crud

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestConvertDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"pgx unique", &pgconn.PgError{Code: "23505", Detail: "Key (id)=(1) already exists."}, ErrDoesExist},
		{"pgx foreign key", &pgconn.PgError{Code: "23503"}, ErrIsReference},
		{"pq unique", &pq.Error{Code: "23505"}, ErrDoesExist},
		{"pq foreign key wrapped", fmt.Errorf("exec: %w", &pq.Error{Code: "23503"}), ErrIsReference},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, ErrDoesExist},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, ErrDoesExist},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, ErrIsReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ConvertDBError(tt.err), tt.want)
		})
	}

	assert.Nil(t, ConvertDBError(nil))

	other := errors.New("connection reset")
	assert.Equal(t, other, ConvertDBError(other))

	assert.True(t, IsNotFound(ConvertDBError(sql.ErrNoRows)))
	assert.True(t, IsDoesExist(ConvertDBError(&pq.Error{Code: "23505"})))
	assert.True(t, IsReference(ConvertDBError(&pq.Error{Code: "23503"})))
}
