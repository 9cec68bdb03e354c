package storage

import (
	"context"

	// import the pgx driver to register it with the database/sql package.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		status     TEXT NOT NULL,
		winner     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS moves (
		id         BIGSERIAL PRIMARY KEY,
		game_id    TEXT NOT NULL REFERENCES games(id),
		seq        INTEGER NOT NULL,
		row_num    INTEGER NOT NULL,
		col_num    INTEGER NOT NULL,
		player     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (game_id, seq)
	)`,
}

func NewPostgresStorage(ctx context.Context, dsn string) (*SQLStorage, error) {
	conn, err := openSQL(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}

	return &SQLStorage{
		Connection: conn,
		Driver:     DriverPostgres,
		schema:     postgresSchema,
	}, nil
}
