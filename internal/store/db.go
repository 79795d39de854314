// Package store implements the local backend on an embedded SQLite database.
// It is the component that computes derived relationship properties; the
// engine only ever merges them.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tartampluch/go-keepintouch/internal/config"
)

//go:embed schema.sql
var schemaFS embed.FS

// OpenDB opens (or creates) the SQLite database at path and applies the
// schema. Foreign keys are enabled so deleting a relationship cascades to its
// interactions and topics.
func OpenDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New(config.ErrDBPathEmpty)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSchemaApply, err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSchemaApply, err)
	}

	return nil
}
