package app

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/conduit-lang/restgen/internal/config"
	"github.com/conduit-lang/restgen/internal/orm/crud"
)

// OpenStore opens the configured store. For SQL drivers the pool is returned
// as well; it is sized and pinged by the server.
func OpenStore(cfg config.DatabaseConfig, refs []config.ReferenceConfig) (crud.Store, *sql.DB, error) {
	if cfg.Driver == "memory" || cfg.Driver == "" {
		return crud.NewMemoryStore(References(refs)...), nil, nil
	}

	dialect, err := crud.DialectFor(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	return crud.NewSQLStore(db, dialect), db, nil
}

// References converts the configured parent references
func References(refs []config.ReferenceConfig) []crud.Reference {
	references := make([]crud.Reference, len(refs))
	for i, r := range refs {
		references[i] = crud.Reference{ChildResource: r.Child, Field: r.Field, ParentResource: r.Parent}
	}
	return references
}
