package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// SQLStorage wraps a database/sql pool together with the dialect it speaks.
type SQLStorage struct {
	Connection *sql.DB
	Driver     string

	schema []string
}

// NewSQLStorage opens the move log database for the given driver ("sqlite" or "postgres").
func NewSQLStorage(ctx context.Context, driver, dsn string) (*SQLStorage, error) {
	switch driver {
	case DriverSQLite:
		return NewSQLiteStorage(ctx, dsn)
	case DriverPostgres:
		return NewPostgresStorage(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func openSQL(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return conn, nil
}

// Init creates the games and moves tables when they do not exist yet.
func (that *SQLStorage) Init(ctx context.Context) error {
	for _, query := range that.schema {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

// Rebind rewrites '?' placeholders into the dialect's positional form.
func (that *SQLStorage) Rebind(query string) string {
	if that.Driver != DriverPostgres {
		return query
	}

	var builder strings.Builder
	builder.Grow(len(query) + 8)

	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			builder.WriteByte('$')
			builder.WriteString(strconv.Itoa(n))
			continue
		}
		builder.WriteRune(ch)
	}

	return builder.String()
}

func (that *SQLStorage) Ping(ctx context.Context) error {
	return that.Connection.PingContext(ctx)
}

func (that *SQLStorage) Close() error {
	return that.Connection.Close()
}
