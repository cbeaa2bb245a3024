package storage

import (
	"database/sql"
	"fmt"
)

const createReposTable = `
CREATE TABLE IF NOT EXISTS repos (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	owner      TEXT NOT NULL,
	name       TEXT NOT NULL,
	indexed_at TEXT NOT NULL,
	UNIQUE(owner, name)
)`

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_id  INTEGER NOT NULL REFERENCES repos(id) ON DELETE CASCADE,
	path     TEXT NOT NULL,
	language TEXT NOT NULL
)`

// symbols persists the flat extraction result. ord preserves traversal
// order so reloaded lists keep the pre-order invariant; symbol_id is the
// slug::qualified contract parsed back by parser.ParseSymbolID.
const createSymbolsTable = `
CREATE TABLE IF NOT EXISTS symbols (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_id        INTEGER NOT NULL REFERENCES repos(id) ON DELETE CASCADE,
	ord            INTEGER NOT NULL,
	symbol_id      TEXT NOT NULL,
	file           TEXT NOT NULL,
	name           TEXT NOT NULL,
	qualified_name TEXT NOT NULL,
	kind           TEXT NOT NULL,
	language       TEXT NOT NULL,
	signature      TEXT NOT NULL,
	docstring      TEXT NOT NULL DEFAULT '',
	summary        TEXT NOT NULL DEFAULT '',
	decorators     TEXT NOT NULL DEFAULT '[]',
	parent         TEXT NOT NULL DEFAULT '',
	line           INTEGER NOT NULL,
	end_line       INTEGER NOT NULL,
	byte_offset    INTEGER NOT NULL,
	byte_length    INTEGER NOT NULL
)`

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_files_repo ON files(repo_id)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_repo ON symbols(repo_id, ord)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(repo_id, file)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_id ON symbols(repo_id, symbol_id)`,
}

// CreateSchema creates all tables and indexes. Uses a transaction so
// schema creation succeeds or fails together.
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"repos", createReposTable},
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range schemaIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}
