package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/schema"
)

// Statement is the DDL creating the table of one resource
type Statement struct {
	Resource string
	Table    string
	SQL      string
}

// Plan renders the CREATE TABLE statements of all registered resources,
// parents before the children referencing them
func Plan(registry *schema.Registry, dialect crud.Dialect, refs []crud.Reference) ([]Statement, error) {
	resources := make([]*schema.ResourceSchema, 0, registry.Count())
	byName := make(map[string]*schema.ResourceSchema, registry.Count())
	for _, name := range registry.List() {
		r, _ := registry.Get(name)
		resources = append(resources, r)
		byName[name] = r
	}

	gen := NewDDLGenerator(dialect)
	var stmts []Statement
	for _, r := range orderByReferences(resources, refs) {
		ddl, err := gen.GenerateCreateTable(r, byName, refs)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", r.Name, err)
		}
		stmts = append(stmts, Statement{Resource: r.Name, Table: r.TableName, SQL: ddl})
	}
	return stmts, nil
}

// Runner executes statements against a database
type Runner struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunner creates a new migration runner
func NewRunner(db *sql.DB, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{db: db, logger: logger}
}

// Apply executes stmts in a single transaction. Tables that already exist
// are left untouched.
func (r *Runner) Apply(ctx context.Context, stmts []Statement) error {
	if len(stmts) == 0 {
		r.logger.Info("no tables to create")
		return nil
	}
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.Warn("failed to rollback transaction", zap.Error(err))
		}
	}()

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.SQL); err != nil {
			return fmt.Errorf("failed to create table %s: %w", s.Table, err)
		}
		r.logger.Debug("table ensured", zap.String("resource", s.Resource), zap.String("table", s.Table))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("migration applied",
		zap.Int("tables", len(stmts)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
