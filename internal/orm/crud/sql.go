package crud

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/conduit-lang/restgen/internal/orm/query"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// Dialect captures the SQL differences between the supported drivers
type Dialect struct {
	Name        string
	Placeholder query.Placeholder
}

var (
	// Postgres is used with the pgx and lib/pq drivers
	Postgres = Dialect{Name: "postgres", Placeholder: query.DollarPlaceholder}
	// SQLite is used with go-sqlite3
	SQLite = Dialect{Name: "sqlite3", Placeholder: query.QuestionPlaceholder}
)

// DialectFor returns the dialect of a database/sql driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// SQLStore implements Store on a database/sql connection pool
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates a new SQLStore
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// DB returns the database connection
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Load retrieves all records matching the predicate
func (s *SQLStore) Load(
	ctx context.Context,
	resource *schema.ResourceSchema,
	pred query.Predicate,
	page Page,
	order query.Order,
) ([]Record, error) {
	pred, err := encodePredicate(resource, pred)
	if err != nil {
		return nil, err
	}

	stmt, args, err := query.NewSelect(resource.TableName, storedColumns(resource)...).
		Placeholder(s.dialect.Placeholder).
		Where(pred).
		OrderBy(order).
		Limit(page.Limit).
		Offset(page.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", ConvertDBError(err))
	}
	defer rows.Close()

	results, err := scanRows(rows, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to scan query results: %w", ConvertDBError(err))
	}

	return results, nil
}

// Insert inserts a record and returns its id
func (s *SQLStore) Insert(
	ctx context.Context,
	resource *schema.ResourceSchema,
	record Record,
) (interface{}, error) {
	var columns []string
	var placeholders []string
	var values []interface{}

	for _, name := range storedColumns(resource) {
		value, ok := record[name]
		if !ok {
			continue
		}
		v, err := toDriverValue(resource.Fields[name], value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		columns = append(columns, query.QuoteIdentifier(name))
		placeholders = append(placeholders, s.dialect.Placeholder(len(values)+1))
		values = append(values, v)
	}

	var stmt string
	if len(columns) == 0 {
		stmt = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", query.QuoteIdentifier(resource.TableName))
	} else {
		stmt = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			query.QuoteIdentifier(resource.TableName),
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "),
		)
	}

	if !autoID(resource) {
		if _, err := s.db.ExecContext(ctx, stmt, values...); err != nil {
			return nil, fmt.Errorf("failed to insert record: %w", ConvertDBError(err))
		}
		return record["id"], nil
	}

	stmt += ` RETURNING "id"`

	var id interface{}
	if err := s.db.QueryRowContext(ctx, stmt, values...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", ConvertDBError(err))
	}

	return fromDriverValue(resource.Fields["id"], id)
}

// Update updates the matching records inside a transaction
func (s *SQLStore) Update(
	ctx context.Context,
	resource *schema.ResourceSchema,
	where query.Predicate,
	record Record,
) error {
	where, err := encodePredicate(resource, where)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sets []string
	var args []interface{}
	counter := 1

	for _, name := range storedColumns(resource) {
		value, ok := record[name]
		if !ok {
			continue
		}
		v, err := toDriverValue(resource.Fields[name], value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		sets = append(sets, fmt.Sprintf("%s = %s", query.QuoteIdentifier(name), s.dialect.Placeholder(counter)))
		args = append(args, v)
		counter++
	}

	if len(sets) == 0 {
		return fmt.Errorf("no fields to update")
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s", query.QuoteIdentifier(resource.TableName), strings.Join(sets, ", "))

	whereSQL, err := where.ToSQL(s.dialect.Placeholder, &counter, &args)
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	if whereSQL != "" {
		stmt += " WHERE " + whereSQL
	}

	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", ConvertDBError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete deletes the matching records inside a transaction
func (s *SQLStore) Delete(
	ctx context.Context,
	resource *schema.ResourceSchema,
	where query.Predicate,
) (int64, error) {
	where, err := encodePredicate(resource, where)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := make([]interface{}, 0)
	counter := 1
	stmt := fmt.Sprintf("DELETE FROM %s", query.QuoteIdentifier(resource.TableName))

	whereSQL, err := where.ToSQL(s.dialect.Placeholder, &counter, &args)
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}
	if whereSQL != "" {
		stmt += " WHERE " + whereSQL
	}

	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", ConvertDBError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return affected, nil
}
