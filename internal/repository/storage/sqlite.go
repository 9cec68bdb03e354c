package storage

import (
	"context"
	"strings"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		status     TEXT NOT NULL,
		winner     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS moves (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id    TEXT NOT NULL REFERENCES games(id),
		seq        INTEGER NOT NULL,
		row_num    INTEGER NOT NULL,
		col_num    INTEGER NOT NULL,
		player     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (game_id, seq)
	)`,
}

// NewSQLiteStorage opens path with foreign keys enforced, matching postgres.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLStorage, error) {
	conn, err := openSQL(ctx, "sqlite3", withForeignKeys(path))
	if err != nil {
		return nil, err
	}

	// every connection to an in-memory database sees its own empty database
	if strings.Contains(path, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	return &SQLStorage{
		Connection: conn,
		Driver:     DriverSQLite,
		schema:     sqliteSchema,
	}, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}

	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}

	return dsn + "?_foreign_keys=on"
}
