// Package store persists cleaned tables and cleaning-run records to PostgreSQL.
//
// Cleaned tables are written with the COPY protocol inside a single
// transaction: either every row lands or none do. Identifiers are always
// quoted, so any column name produced by the cleaner is safe to use.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/table"
)

// DBTX is the interface for database operations.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Beginner starts transactions. Satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrEmptyName is returned when a destination table name is blank.
var ErrEmptyName = errors.New("table name is empty")

// Connect opens a connection pool configured from cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// quoteIdentifier safely quotes a PostgreSQL identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnType maps a semantic column type to its PostgreSQL type.
func columnType(t table.ColumnType) string {
	switch t {
	case table.TypeNumeric, table.TypeCurrency:
		return "numeric"
	case table.TypeDate:
		return "date"
	default:
		return "text"
	}
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for t.
func CreateTableSQL(name string, t *table.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdentifier(name))
	b.WriteString(" (")
	for i, c := range t.Columns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdentifier(c.Name))
		b.WriteByte(' ')
		b.WriteString(columnType(c.Type))
	}
	b.WriteString(")")
	return b.String()
}

// WriteTable creates the destination table when absent and copies every row
// of t into it. The whole write is one transaction. Returns the number of
// rows copied.
func WriteTable(ctx context.Context, db Beginner, name string, t *table.Table) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, ErrEmptyName
	}

	rows, err := copyRows(t)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, CreateTableSQL(name, t)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", name, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{name}, t.Names(), pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// copyRows converts t into COPY rows in column order.
func copyRows(t *table.Table) ([][]any, error) {
	cols := t.Columns()
	out := make([][]any, t.Len())
	for i := range out {
		row := make([]any, len(cols))
		for j, c := range cols {
			v, err := pgValue(c, i)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

func pgValue(c *table.Column, row int) (any, error) {
	v := c.Values[row]
	switch c.Type {
	case table.TypeNumeric, table.TypeCurrency:
		n, err := ToPgNumeric(v)
		if err != nil {
			return nil, &table.CoercionError{Column: c.Name, Row: row, Value: v.Text(), Target: "numeric"}
		}
		return n, nil
	case table.TypeDate:
		if c.Layout != "" && v.Kind() == table.KindString {
			if tm, err := time.Parse(c.Layout, v.Text()); err == nil {
				return pgtype.Date{Time: tm, Valid: true}, nil
			}
		}
		d, err := ToPgDate(v)
		if err != nil {
			return nil, &table.CoercionError{Column: c.Name, Row: row, Value: v.Text(), Target: "date"}
		}
		return d, nil
	default:
		return ToPgText(v), nil
	}
}
